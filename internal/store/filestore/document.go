// Package filestore implements the store contracts on top of flat JSON
// documents. Each document is read into an in-process cache on first
// access and rewritten in full on every mutation.
//
// The whole document lives behind a single-writer mutex: one mutation
// at a time, reads see the last completed write. The backend is meant
// for single-user local deployments; it performs no finer-grained
// concurrency control than that.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"libroteca/internal/entities"
)

// booksDocument mirrors the on-disk layout of the books file. The
// Spanish keys are the historical document format and are kept so
// existing data files keep working.
type booksDocument struct {
	Books     []entities.Book     `json:"libros"`
	Favorites []entities.Favorite `json:"favoritos"`
}

// userRecord is the on-disk user shape. It exists because the API
// entity hides the password hash from JSON, while the document must
// persist it.
type userRecord struct {
	ID        int64             `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Password  string            `json:"password"`
	Role      entities.UserRole `json:"role"`
	CreatedAt time.Time         `json:"created_at"`
}

func (r userRecord) toEntity() entities.User {
	return entities.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.Password,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
	}
}

// usersDocument mirrors the on-disk layout of the users file.
type usersDocument struct {
	Users []userRecord `json:"users"`
}

// usersFile is the shared cache over the users document. The user and
// auth stores both mutate it, so they hold the same instance and the
// same lock.
type usersFile struct {
	path string

	mu     sync.Mutex
	loaded bool
	doc    usersDocument
}

func newUsersFile(path string) *usersFile {
	return &usersFile{path: path}
}

// load reads the document once. A missing file is treated as an empty
// document so a fresh deployment starts without setup.
func (f *usersFile) load() error {
	if f.loaded {
		return nil
	}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		f.doc = usersDocument{}
		f.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read users document: %w", err)
	}
	if err := json.Unmarshal(data, &f.doc); err != nil {
		return fmt.Errorf("failed to parse users document: %w", err)
	}
	f.loaded = true
	return nil
}

// save rewrites the whole document.
func (f *usersFile) save() error {
	data, err := json.MarshalIndent(f.doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write users document: %w", err)
	}
	return nil
}

func (f *usersFile) nextID() int64 {
	var max int64
	for _, u := range f.doc.Users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}
