package dbstore

import (
	"errors"

	"gorm.io/gorm"

	"libroteca/internal/entities"
	"libroteca/internal/store"
)

// UserStore is the relational user store. Passwords arrive hashed; this
// store never hashes.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store over the given database handle.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) List() ([]entities.User, error) {
	var users []entities.User
	err := s.db.Find(&users).Error
	return users, err
}

func (s *UserStore) GetByID(id int64) (*entities.User, error) {
	var user entities.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(email string) (*entities.User, error) {
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

func (s *UserStore) Create(username, email, passwordHash string, role entities.UserRole) (*entities.User, error) {
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
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Update(id int64, update store.UserUpdate) (*entities.User, error) {
	var existing entities.User
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	updates := map[string]any{
		"username": update.Username,
		"email":    update.Email,
		"role":     update.Role,
	}
	if err := s.db.Model(&entities.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id int64) (bool, error) {
	result := s.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *UserStore) Count() (int64, error) {
	var count int64
	err := s.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

var _ store.UserStore = (*UserStore)(nil)
