package dbstore

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"libroteca/internal/entities"
	"libroteca/internal/store"
)

// AuthStore is the relational credential and blacklist store.
type AuthStore struct {
	db        *gorm.DB
	retention time.Duration
}

// NewAuthStore creates an auth store. Blacklist entries older than the
// retention window are removed by PurgeExpiredBlacklistEntries.
func NewAuthStore(db *gorm.DB, retention time.Duration) *AuthStore {
	return &AuthStore{db: db, retention: retention}
}

func (s *AuthStore) FindByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthStore) CreateUser(username, email, passwordHash string, role entities.UserRole) (int64, error) {
	if role == "" {
		role = entities.UserRoleUser
	}
	user := entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

// BlacklistToken records the token. Re-blacklisting an already listed
// token is not an error and keeps the original timestamp.
func (s *AuthStore) BlacklistToken(token string) error {
	var existing entities.BlacklistedToken
	err := s.db.Where("token = ?", token).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	entry := entities.BlacklistedToken{Token: token}
	return s.db.Create(&entry).Error
}

func (s *AuthStore) IsBlacklisted(token string) (bool, error) {
	var count int64
	err := s.db.Model(&entities.BlacklistedToken{}).Where("token = ?", token).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpiredBlacklistEntries deletes entries past the retention
// window. A purged token that is still cryptographically valid becomes
// acceptable again; the blacklist only covers early revocation within
// the token's natural lifetime.
func (s *AuthStore) PurgeExpiredBlacklistEntries() (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	result := s.db.Where("created_at < ?", cutoff).Delete(&entities.BlacklistedToken{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

var _ store.AuthStore = (*AuthStore)(nil)
