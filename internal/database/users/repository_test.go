package users

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db)
}

func TestRepository_CreateUser(t *testing.T) {
	repo := setupTestDB(t)

	user := &entities.User{Email: " Reader@Example.com ", PasswordHash: "hash", FirstName: "Ada"}
	require.NoError(t, repo.CreateUser(user))

	assert.NotZero(t, user.ID)
	assert.Equal(t, "reader@example.com", user.Email)
}

func TestRepository_CreateUser_DuplicateEmail(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.CreateUser(&entities.User{Email: "reader@example.com"}))
	err := repo.CreateUser(&entities.User{Email: "READER@example.com"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRepository_GetUserByEmail(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.CreateUser(&entities.User{Email: "reader@example.com"}))

	user, err := repo.GetUserByEmail("Reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)

	_, err = repo.GetUserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetUserByID(t *testing.T) {
	repo := setupTestDB(t)
	created := &entities.User{Email: "reader@example.com"}
	require.NoError(t, repo.CreateUser(created))

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, user.Email)

	_, err = repo.GetUserByID(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_CountUsersAndLastLogin(t *testing.T) {
	repo := setupTestDB(t)

	count, err := repo.CountUsers()
	require.NoError(t, err)
	assert.Zero(t, count)

	user := &entities.User{Email: "reader@example.com"}
	require.NoError(t, repo.CreateUser(user))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(user.ID, now))

	reloaded, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, now.Equal(*reloaded.LastLoginAt))

	count, err = repo.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
