package filestore

import (
	"time"

	"libroteca/internal/entities"
	"libroteca/internal/store"
)

// UserStore is the file-backed user store. It shares the users document
// cache with AuthStore so both see each other's writes.
type UserStore struct {
	file *usersFile
}

// NewUserStore creates a user store over the given JSON document path.
// Use NewStores when an AuthStore over the same document is also needed.
func NewUserStore(path string) *UserStore {
	return &UserStore{file: newUsersFile(path)}
}

func (s *UserStore) List() ([]entities.User, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}
	users := make([]entities.User, 0, len(s.file.doc.Users))
	for _, rec := range s.file.doc.Users {
		users = append(users, rec.toEntity())
	}
	return users, nil
}

func (s *UserStore) GetByID(id int64) (*entities.User, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}
	for _, rec := range s.file.doc.Users {
		if rec.ID == id {
			user := rec.toEntity()
			return &user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) GetByEmail(email string) (*entities.User, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}
	for _, rec := range s.file.doc.Users {
		if rec.Email == email {
			user := rec.toEntity()
			return &user, nil
		}
	}
	return nil, store.ErrNotFound
}

// Create appends a user record. The password arrives already hashed;
// this store never hashes.
func (s *UserStore) Create(username, email, passwordHash string, role entities.UserRole) (*entities.User, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}
	if role == "" {
		role = entities.UserRoleUser
	}
	rec := userRecord{
		ID:        s.file.nextID(),
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		Role:      role,
		CreatedAt: time.Now(),
	}
	s.file.doc.Users = append(s.file.doc.Users, rec)
	if err := s.file.save(); err != nil {
		return nil, err
	}
	user := rec.toEntity()
	return &user, nil
}

func (s *UserStore) Update(id int64, update store.UserUpdate) (*entities.User, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return nil, err
	}
	for i := range s.file.doc.Users {
		if s.file.doc.Users[i].ID != id {
			continue
		}
		rec := &s.file.doc.Users[i]
		rec.Username = update.Username
		rec.Email = update.Email
		rec.Role = update.Role
		if err := s.file.save(); err != nil {
			return nil, err
		}
		user := rec.toEntity()
		return &user, nil
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) Delete(id int64) (bool, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return false, err
	}
	for i := range s.file.doc.Users {
		if s.file.doc.Users[i].ID == id {
			s.file.doc.Users = append(s.file.doc.Users[:i], s.file.doc.Users[i+1:]...)
			if err := s.file.save(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) Count() (int64, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return 0, err
	}
	return int64(len(s.file.doc.Users)), nil
}

var _ store.UserStore = (*UserStore)(nil)
