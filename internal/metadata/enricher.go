package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metrics"
)

var (
	ErrNoISBN            = errors.New("book has no ISBN")
	ErrEnrichmentRunning = errors.New("metadata enrichment is already in progress")
)

// maxGenres caps how many provider subjects become genres.
const maxGenres = 5

// BookLookup resolves an ISBN to metadata.
type BookLookup interface {
	Lookup(ctx context.Context, isbn string) (*Lookup, error)
}

// BookUpdater defines the interface for updating books in the database.
type BookUpdater interface {
	GetBookByID(id uint) (*entities.Book, error)
	UpdateBookMetadata(id uint, fields BookUpdateFields) error
	GetBooksMissingMetadata() ([]entities.Book, error)
}

// CoverInvalidator defines the interface for invalidating cached covers.
type CoverInvalidator interface {
	InvalidateCover(bookID uint) error
}

// BookUpdateFields contains the fields that can be updated via enrichment.
// Nil means unchanged.
type BookUpdateFields struct {
	Publisher       *string
	PublicationYear *int
	PageCount       *int
	Language        *string
	CoverImage      *string
	Description     *string
	Authors         []string
	Genres          []string
}

// EnrichmentResult contains the result of an enrichment operation.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
}

// BulkEnrichmentResult contains the summary of a bulk enrichment operation.
type BulkEnrichmentResult struct {
	TotalBooks int      `json:"total_books"`
	Enriched   int      `json:"enriched"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// Enricher fills in missing book fields from ISBN metadata.
type Enricher struct {
	lookup           BookLookup
	db               BookUpdater
	coverInvalidator CoverInvalidator
	running          atomic.Bool
}

func NewEnricher(lookup BookLookup, db BookUpdater) *Enricher {
	return &Enricher{
		lookup: lookup,
		db:     db,
	}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (e *Enricher) SetCoverInvalidator(invalidator CoverInvalidator) {
	e.coverInvalidator = invalidator
}

// EnrichBook looks the book's ISBN up and fills only the fields that are empty.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.db.GetBookByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.ISBN == "" {
		return nil, ErrNoISBN
	}

	lookup, err := e.lookup.Lookup(ctx, book.ISBN)
	if err != nil {
		metrics.IncEnrichment("failed")
		return nil, fmt.Errorf("lookup %s: %w", book.ISBN, err)
	}

	updates, fieldsUpdated := buildUpdates(book, &lookup.Book)
	if len(fieldsUpdated) == 0 {
		metrics.IncEnrichment("unchanged")
		return &EnrichmentResult{Book: book, FieldsUpdated: []string{}, Source: lookup.Source}, nil
	}

	if updates.CoverImage != nil && e.coverInvalidator != nil {
		if err := e.coverInvalidator.InvalidateCover(bookID); err != nil {
			log.Printf("Failed to invalidate cover for book %d: %v", bookID, err)
		}
	}

	if err := e.db.UpdateBookMetadata(bookID, updates); err != nil {
		return nil, fmt.Errorf("update book metadata: %w", err)
	}

	book, err = e.db.GetBookByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("refresh book: %w", err)
	}

	metrics.IncEnrichment("updated")
	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        lookup.Source,
	}, nil
}

// IsRunning reports whether a bulk enrichment is in progress.
func (e *Enricher) IsRunning() bool {
	return e.running.Load()
}

// EnrichAllMissing enriches every book that has an ISBN but lacks metadata.
// Only one bulk run may be active at a time.
func (e *Enricher) EnrichAllMissing(ctx context.Context) (*BulkEnrichmentResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrEnrichmentRunning
	}
	defer e.running.Store(false)

	books, err := e.db.GetBooksMissingMetadata()
	if err != nil {
		return nil, fmt.Errorf("get books missing metadata: %w", err)
	}

	result := &BulkEnrichmentResult{TotalBooks: len(books)}

	for _, book := range books {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			return result, ctx.Err()
		default:
		}

		enrichResult, err := e.EnrichBook(ctx, book.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				result.Skipped++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			continue
		}

		if len(enrichResult.FieldsUpdated) > 0 {
			result.Enriched++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

// buildUpdates returns updates for the fields the book is missing and the record has.
func buildUpdates(book *entities.Book, record *BookRecord) (BookUpdateFields, []string) {
	var updates BookUpdateFields
	fieldsUpdated := []string{}

	if book.Publisher == "" && record.Publisher != "" {
		updates.Publisher = &record.Publisher
		fieldsUpdated = append(fieldsUpdated, "publisher")
	}

	if book.PublicationYear == 0 {
		if year := record.DatePublished.Year(); year > 0 {
			updates.PublicationYear = &year
			fieldsUpdated = append(fieldsUpdated, "publicationYear")
		}
	}

	if book.PageCount == 0 && record.Pages > 0 {
		updates.PageCount = &record.Pages
		fieldsUpdated = append(fieldsUpdated, "pageCount")
	}

	if book.Language == "" && record.Language != "" {
		updates.Language = &record.Language
		fieldsUpdated = append(fieldsUpdated, "language")
	}

	if book.CoverImage == "" && record.Image != "" {
		updates.CoverImage = &record.Image
		fieldsUpdated = append(fieldsUpdated, "coverImage")
	}

	if book.Description == "" && record.Synopsis != "" {
		updates.Description = &record.Synopsis
		fieldsUpdated = append(fieldsUpdated, "description")
	}

	if len(book.Authors) == 0 && len(record.Authors) > 0 {
		updates.Authors = record.Authors
		fieldsUpdated = append(fieldsUpdated, "authors")
	}

	if len(book.Genres) == 0 && len(record.Subjects) > 0 {
		genres := record.Subjects
		if len(genres) > maxGenres {
			genres = genres[:maxGenres]
		}
		updates.Genres = genres
		fieldsUpdated = append(fieldsUpdated, "genres")
	}

	return updates, fieldsUpdated
}
