package dbstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libroteca/internal/entities"
	"libroteca/internal/store"
)

func TestDBUserStoreCRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewUserStore(db)

	created, err := s.Create("maria", "maria@example.com", "$2a$10$hash", entities.UserRoleUser)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	byEmail, err := s.GetByEmail("maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "$2a$10$hash", byEmail.PasswordHash)

	updated, err := s.Update(created.ID, store.UserUpdate{
		Username: "maria2",
		Email:    "maria2@example.com",
		Role:     entities.UserRoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "maria2", updated.Username)
	assert.Equal(t, entities.UserRoleAdmin, updated.Role)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	deleted, err := s.Delete(created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete(created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = s.GetByID(created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDBUserStoreEmptyRoleDefaultsToUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewUserStore(db)

	created, err := s.Create("ana", "ana@example.com", "hash", "")
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleUser, created.Role)
}

func TestDBAuthStoreCredentials(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewAuthStore(db, 2*time.Hour)

	_, err := s.FindByEmail("nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	id, err := s.CreateUser("pedro", "pedro@example.com", "hash", entities.UserRoleUser)
	require.NoError(t, err)
	assert.NotZero(t, id)

	found, err := s.FindByEmail("pedro@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
}

func TestDBAuthStoreBlacklist(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewAuthStore(db, 2*time.Hour)

	revoked, err := s.IsBlacklisted("tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.BlacklistToken("tok"))
	require.NoError(t, s.BlacklistToken("tok")) // idempotent

	revoked, err = s.IsBlacklisted("tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	var count int64
	require.NoError(t, db.Model(&entities.BlacklistedToken{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDBAuthStorePurgeRemovesOnlyExpired(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	s := NewAuthStore(db, 2*time.Hour)

	require.NoError(t, s.BlacklistToken("fresh"))
	stale := entities.BlacklistedToken{Token: "stale", CreatedAt: time.Now().Add(-3 * time.Hour)}
	require.NoError(t, db.Create(&stale).Error)

	removed, err := s.PurgeExpiredBlacklistEntries()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	revoked, err := s.IsBlacklisted("stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = s.IsBlacklisted("fresh")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSeedGenresIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	// setupTestDB already seeded once; a second pass adds nothing.
	require.NoError(t, SeedGenres(db, []entities.Genre{{ID: 1, Name: "Drama"}}))

	var count int64
	require.NoError(t, db.Model(&entities.Genre{}).Count(&count).Error)
	assert.Equal(t, int64(10), count)
}
