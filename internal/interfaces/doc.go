// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: Book CRUD for the API (internal/http/books.go)
//   - BookUpdater: Partial metadata updates (internal/metadata/enricher.go)
//   - OrphanCleaner: Removes unreferenced authors and genres (internal/tasks/cleanup_orphans.go)
//   - UserRepository: User accounts (internal/auth/service.go)
//
// ## Metadata Interfaces
//
//   - Provider: One upstream ISBN source (internal/metadata/resolver.go)
//   - Cache: Successful lookups keyed by ISBN (internal/metadata/cache.go)
//   - ISBNResolver: What the lookup endpoint needs (internal/http/lookup.go)
//
// # Adding a New Metadata Provider
//
//  1. Implement metadata.Provider in internal/metadata/. Map "no such book" to
//     ErrNotFound and every network or decoding failure to an error wrapping
//     ErrTransport, so the resolver knows whether to fall through.
//
//     type OpenLibraryClient struct {
//         fetcher httpFetcher
//         baseURL string
//     }
//
//     func (c *OpenLibraryClient) Name() string { return "openlibrary" }
//
//     func (c *OpenLibraryClient) FetchByISBN(ctx context.Context, isbn string) (*Lookup, error) {
//         // Fetch, decode into a BookRecord, build the {"book": ...} body
//     }
//
//  2. Add a compile-time check to checks.go:
//
//     var _ metadata.Provider = (*metadata.OpenLibraryClient)(nil)
//
//  3. Wire it in entrypoint.NewResolver.
//
// # Adding a Background Task
//
//  1. Define the task type and its queue in internal/tasks/, following
//     enrich_book.go: a struct implementing backlite.Task and a
//     NewXxxQueue constructor taking a narrow interface.
//  2. Register the queue in entrypoint.Run.
//  3. Add an EnqueueXxx helper to tasks.Client when handlers need it.
package interfaces
