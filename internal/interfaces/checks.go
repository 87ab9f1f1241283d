package interfaces

// Compile-time interface implementation checks.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.BookStore = (*books.Repository)(nil)
var _ http.BookGetter = (*books.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ metadata.BookUpdater = (*database.MetadataUpdater)(nil)
var _ tasks.OrphanCleaner = (*books.Repository)(nil)
var _ auth.UserRepository = (*users.Repository)(nil)

// =============================================================================
// Metadata Lookup
// =============================================================================

var _ metadata.Provider = (*metadata.ISBNdbClient)(nil)
var _ metadata.Provider = (*metadata.GoogleBooksClient)(nil)
var _ metadata.Cache = (*metadata.LRUCache)(nil)
var _ metadata.BookLookup = (*metadata.Resolver)(nil)
var _ http.ISBNResolver = (*metadata.Resolver)(nil)

// =============================================================================
// Enrichment and Covers
// =============================================================================

var _ http.BookEnricher = (*metadata.Enricher)(nil)
var _ tasks.BookEnricher = (*metadata.Enricher)(nil)
var _ tasks.BulkEnricher = (*metadata.Enricher)(nil)
var _ metadata.CoverInvalidator = (*covers.Cache)(nil)
var _ http.CoverCache = (*covers.Cache)(nil)

// =============================================================================
// Task Queue
// =============================================================================

var _ http.EnrichmentQueue = (*tasks.Client)(nil)
var _ http.BulkEnrichmentQueue = (*tasks.Client)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
