// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (SQLite or PostgreSQL), migrations
//	├── metadata.go      # Adapter exposing books.Repository to the enricher
//	├── books/           # Books with name-based author and genre associations
//	└── users/           # Registered users
//
// # Usage
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	book, err := booksRepo.GetBookByID(123)
//
// Errors are translated by GORM, so unique constraint violations surface as
// gorm.ErrDuplicatedKey and missing rows as gorm.ErrRecordNotFound.
package database
