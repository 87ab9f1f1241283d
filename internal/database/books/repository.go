// Package books provides database operations for books and their authors and genres.
//
// Authors and genres are associated by name: existing rows are reused and
// unknown names are created, inside the same transaction as the book write.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(123)
package books

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// ErrBookExists is returned when a write would give a book an ISBN another book already has.
var ErrBookExists = errors.New("book already exists")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Authors", func(db *gorm.DB) *gorm.DB {
		return db.Order("authors.name ASC")
	}).Preload("Genres", func(db *gorm.DB) *gorm.DB {
		return db.Order("genres.name ASC")
	})
}

// ListBooks returns all books with authors and genres, oldest first.
func (r *Repository) ListBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := withAssociations(r.db).Order("id ASC").Find(&books).Error
	return books, err
}

// GetBookByID retrieves a book with its authors and genres.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := withAssociations(r.db).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindBookByISBN finds a book by its exact ISBN.
func (r *Repository) FindBookByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := withAssociations(r.db).Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook stores a new book. A non-empty ISBN must be unique.
func (r *Repository) CreateBook(book *entities.Book, authorNames, genreNames []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureISBNFree(tx, book.ISBN, 0); err != nil {
			return err
		}

		authors, err := findOrCreateAuthors(tx, authorNames)
		if err != nil {
			return err
		}
		genres, err := findOrCreateGenres(tx, genreNames)
		if err != nil {
			return err
		}

		book.ID = 0
		book.Authors = authors
		book.Genres = genres
		return tx.Omit("Authors.*", "Genres.*").Create(book).Error
	})
}

// UpdateBook overwrites the book's fields and replaces its authors and genres.
func (r *Repository) UpdateBook(id uint, fields *entities.Book, authorNames, genreNames []string) (*entities.Book, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}
		if err := ensureISBNFree(tx, fields.ISBN, id); err != nil {
			return err
		}

		// A map writes zero values too, so cleared fields stick.
		err := tx.Model(&book).Updates(map[string]any{
			"title":            fields.Title,
			"isbn":             fields.ISBN,
			"publication_year": fields.PublicationYear,
			"publisher":        fields.Publisher,
			"cover_image":      fields.CoverImage,
			"page_count":       fields.PageCount,
			"language":         fields.Language,
			"description":      fields.Description,
		}).Error
		if err != nil {
			return err
		}

		if err := replaceAuthors(tx, &book, authorNames); err != nil {
			return err
		}
		return replaceGenres(tx, &book, genreNames)
	})
	if err != nil {
		return nil, err
	}
	return r.GetBookByID(id)
}

// ensureISBNFree fails with ErrBookExists when a book other than exceptID
// already has isbn. Empty ISBNs never conflict.
func ensureISBNFree(tx *gorm.DB, isbn string, exceptID uint) error {
	if isbn == "" {
		return nil
	}
	var count int64
	err := tx.Model(&entities.Book{}).Where("isbn = ? AND id <> ?", isbn, exceptID).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrBookExists
	}
	return nil
}

// DeleteBook removes a book and its author/genre links.
// Authors and genres themselves are kept.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_authors WHERE book_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM book_genres WHERE book_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UpdateBookMetadata updates selected columns without touching associations.
func (r *Repository) UpdateBookMetadata(id uint, fields map[string]any) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields).Error
}

// SetBookAssociations replaces authors and/or genres. A nil list leaves that association unchanged.
func (r *Repository) SetBookAssociations(id uint, authorNames, genreNames []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}
		if authorNames != nil {
			if err := replaceAuthors(tx, &book, authorNames); err != nil {
				return err
			}
		}
		if genreNames != nil {
			return replaceGenres(tx, &book, genreNames)
		}
		return nil
	})
}

// GetBooksMissingMetadata returns books with an ISBN but without cover, publisher, year or page count.
func (r *Repository) GetBooksMissingMetadata() ([]entities.Book, error) {
	var books []entities.Book
	err := withAssociations(r.db).
		Where("isbn <> '' AND isbn IS NOT NULL").
		Where(
			"cover_image = '' OR cover_image IS NULL OR publisher = '' OR publisher IS NULL OR publication_year = 0 OR publication_year IS NULL OR page_count = 0 OR page_count IS NULL",
		).Order("id ASC").Find(&books).Error
	return books, err
}

// CountBooks returns the number of stored books.
func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// DeleteOrphanAuthorsAndGenres removes authors and genres no book refers to.
func (r *Repository) DeleteOrphanAuthorsAndGenres() (authors, genres int64, err error) {
	err = r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id NOT IN (?)", tx.Table("book_authors").Select("author_id")).Delete(&entities.Author{})
		if res.Error != nil {
			return res.Error
		}
		authors = res.RowsAffected

		res = tx.Where("id NOT IN (?)", tx.Table("book_genres").Select("genre_id")).Delete(&entities.Genre{})
		if res.Error != nil {
			return res.Error
		}
		genres = res.RowsAffected
		return nil
	})
	return authors, genres, err
}

func replaceAuthors(tx *gorm.DB, book *entities.Book, names []string) error {
	authors, err := findOrCreateAuthors(tx, names)
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		return tx.Model(book).Association("Authors").Clear()
	}
	return tx.Model(book).Association("Authors").Replace(authors)
}

func replaceGenres(tx *gorm.DB, book *entities.Book, names []string) error {
	genres, err := findOrCreateGenres(tx, names)
	if err != nil {
		return err
	}
	if len(genres) == 0 {
		return tx.Model(book).Association("Genres").Clear()
	}
	return tx.Model(book).Association("Genres").Replace(genres)
}

func findOrCreateAuthors(tx *gorm.DB, names []string) ([]entities.Author, error) {
	names = uniqueNames(names)
	authors := make([]entities.Author, 0, len(names))
	if len(names) == 0 {
		return authors, nil
	}

	var existing []entities.Author
	if err := tx.Where("name IN ?", names).Find(&existing).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]entities.Author, len(existing))
	for _, a := range existing {
		byName[a.Name] = a
	}

	for _, name := range names {
		author, ok := byName[name]
		if !ok {
			author = entities.Author{Name: name}
			if err := tx.Create(&author).Error; err != nil {
				return nil, err
			}
		}
		authors = append(authors, author)
	}
	return authors, nil
}

func findOrCreateGenres(tx *gorm.DB, names []string) ([]entities.Genre, error) {
	names = uniqueNames(names)
	genres := make([]entities.Genre, 0, len(names))
	if len(names) == 0 {
		return genres, nil
	}

	var existing []entities.Genre
	if err := tx.Where("name IN ?", names).Find(&existing).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]entities.Genre, len(existing))
	for _, g := range existing {
		byName[g.Name] = g
	}

	for _, name := range names {
		genre, ok := byName[name]
		if !ok {
			genre = entities.Genre{Name: name}
			if err := tx.Create(&genre).Error; err != nil {
				return nil, err
			}
		}
		genres = append(genres, genre)
	}
	return genres, nil
}

// uniqueNames trims names and drops blanks and duplicates, keeping first-seen order.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
