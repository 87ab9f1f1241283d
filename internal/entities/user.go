package entities

import "time"

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	FirstName    string     `gorm:"size:100" json:"firstName,omitempty"`
	LastName     string     `gorm:"size:100" json:"lastName,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
