package database

import (
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

// MetadataUpdater wraps the books repository to implement metadata.BookUpdater.
type MetadataUpdater struct {
	books *books.Repository
}

// NewMetadataUpdater creates a MetadataUpdater wrapping the given repository.
func NewMetadataUpdater(repo *books.Repository) *MetadataUpdater {
	return &MetadataUpdater{books: repo}
}

// GetBookByID delegates to the underlying repository.
func (m *MetadataUpdater) GetBookByID(id uint) (*entities.Book, error) {
	return m.books.GetBookByID(id)
}

// UpdateBookMetadata converts BookUpdateFields to column updates and association changes.
func (m *MetadataUpdater) UpdateBookMetadata(id uint, fields metadata.BookUpdateFields) error {
	updates := make(map[string]any)

	if fields.Publisher != nil {
		updates["publisher"] = *fields.Publisher
	}
	if fields.PublicationYear != nil {
		updates["publication_year"] = *fields.PublicationYear
	}
	if fields.PageCount != nil {
		updates["page_count"] = *fields.PageCount
	}
	if fields.Language != nil {
		updates["language"] = *fields.Language
	}
	if fields.CoverImage != nil {
		updates["cover_image"] = *fields.CoverImage
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}

	if len(updates) > 0 {
		if err := m.books.UpdateBookMetadata(id, updates); err != nil {
			return err
		}
	}

	if fields.Authors == nil && fields.Genres == nil {
		return nil
	}
	return m.books.SetBookAssociations(id, fields.Authors, fields.Genres)
}

// GetBooksMissingMetadata delegates to the underlying repository.
func (m *MetadataUpdater) GetBooksMissingMetadata() ([]entities.Book, error) {
	return m.books.GetBooksMissingMetadata()
}
