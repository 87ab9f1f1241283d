// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByEmail("reader@example.com")
package users

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser stores a new user. Emails are stored lowercased; a duplicate
// email fails with gorm.ErrDuplicatedKey.
func (r *Repository) CreateUser(user *entities.User) error {
	user.Email = normalizeEmail(user.Email)
	return r.db.Create(user).Error
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (r *Repository) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CountUsers returns the number of registered users.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// UpdateLastLogin records a successful login.
func (r *Repository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
