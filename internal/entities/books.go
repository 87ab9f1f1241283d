package entities

import (
	"time"
)

type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"index;size:512" json:"title"`
	ISBN            string    `gorm:"index;size:20" json:"isbn"`
	PublicationYear int       `json:"publicationYear"`
	Publisher       string    `gorm:"size:256" json:"publisher"`
	CoverImage      string    `gorm:"size:2048" json:"coverImage"`
	PageCount       int       `json:"pageCount"`
	Language        string    `gorm:"size:16" json:"language"`
	Description     string    `gorm:"type:text" json:"description"`
	Authors         []Author  `gorm:"many2many:book_authors;" json:"authors"`
	Genres          []Genre   `gorm:"many2many:book_genres;" json:"genres"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AuthorNames returns the names of the book's authors in association order.
func (b *Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return names
}

// GenreNames returns the names of the book's genres in association order.
func (b *Book) GenreNames() []string {
	names := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		names = append(names, g.Name)
	}
	return names
}

type Author struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"uniqueIndex;size:256" json:"name"`
	Books []Book `gorm:"many2many:book_authors;" json:"-"`
}

type Genre struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"uniqueIndex;size:100" json:"name"`
	Books []Book `gorm:"many2many:book_genres;" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

func (Author) TableName() string {
	return "authors"
}

func (Genre) TableName() string {
	return "genres"
}
