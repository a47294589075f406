package filestore

import (
	"sync"
	"time"

	"libroteca/internal/entities"
	"libroteca/internal/store"
)

// AuthStore is the file-backed credential and blacklist store. The
// blacklist lives in process memory only: tokens expire after two hours
// anyway, so losing the list on restart shortens revocation by at most
// the remaining token lifetime. A local single-user deployment accepts
// that trade.
type AuthStore struct {
	file      *usersFile
	retention time.Duration

	blmu      sync.Mutex
	blacklist map[string]time.Time
}

// NewAuthStore creates an auth store over the given users document.
func NewAuthStore(path string, retention time.Duration) *AuthStore {
	return &AuthStore{
		file:      newUsersFile(path),
		retention: retention,
		blacklist: make(map[string]time.Time),
	}
}

// NewStores builds the user and auth stores over one shared users
// document cache, so writes through either are visible to both.
func NewStores(path string, retention time.Duration) (*UserStore, *AuthStore) {
	file := newUsersFile(path)
	auth := &AuthStore{
		file:      file,
		retention: retention,
		blacklist: make(map[string]time.Time),
	}
	return &UserStore{file: file}, auth
}

func (s *AuthStore) FindByEmail(email string) (*entities.User, error) {
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

// CreateUser appends a user record and returns the assigned id. The
// password arrives already hashed.
func (s *AuthStore) CreateUser(username, email, passwordHash string, role entities.UserRole) (int64, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := s.file.load(); err != nil {
		return 0, err
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
		return 0, err
	}
	return rec.ID, nil
}

// BlacklistToken records the token. Re-blacklisting keeps the original
// timestamp so the retention window is not extended.
func (s *AuthStore) BlacklistToken(token string) error {
	s.blmu.Lock()
	defer s.blmu.Unlock()

	if _, ok := s.blacklist[token]; !ok {
		s.blacklist[token] = time.Now()
	}
	return nil
}

func (s *AuthStore) IsBlacklisted(token string) (bool, error) {
	s.blmu.Lock()
	defer s.blmu.Unlock()

	_, ok := s.blacklist[token]
	return ok, nil
}

// PurgeExpiredBlacklistEntries drops entries older than the retention
// window and reports how many were removed.
func (s *AuthStore) PurgeExpiredBlacklistEntries() (int64, error) {
	s.blmu.Lock()
	defer s.blmu.Unlock()

	cutoff := time.Now().Add(-s.retention)
	var removed int64
	for token, at := range s.blacklist {
		if at.Before(cutoff) {
			delete(s.blacklist, token)
			removed++
		}
	}
	return removed, nil
}

var _ store.AuthStore = (*AuthStore)(nil)
