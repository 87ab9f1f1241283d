package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metrics"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// BookStore is the persistence the books API needs.
type BookStore interface {
	ListBooks() ([]entities.Book, error)
	GetBookByID(id uint) (*entities.Book, error)
	FindBookByISBN(isbn string) (*entities.Book, error)
	CreateBook(book *entities.Book, authorNames, genreNames []string) error
	UpdateBook(id uint, fields *entities.Book, authorNames, genreNames []string) (*entities.Book, error)
	DeleteBook(id uint) error
}

// EnrichmentQueue schedules background work that follows book writes.
type EnrichmentQueue interface {
	EnqueueEnrichBook(bookID uint) (string, error)
	EnqueueCleanupOrphans() (string, error)
}

// BookRequest is the body of POST /books and PUT /books/:id.
type BookRequest struct {
	Title           string         `json:"title" validate:"notblank"`
	Authors         []string       `json:"authors" validate:"required,min=1,dive,notblank"`
	Genres          []string       `json:"genres"`
	ISBN            string         `json:"isbn" validate:"omitempty,isbn"`
	PublicationYear flexibleNumber `json:"publicationYear"`
	Publisher       string         `json:"publisher"`
	CoverImage      string         `json:"coverImage"`
	PageCount       flexibleNumber `json:"pageCount"`
	Language        string         `json:"language"`
	Description     string         `json:"description"`
}

func (r *BookRequest) validate() []validation.FieldError {
	errs := validation.Struct(r)
	if !r.PublicationYear.Present || !r.PublicationYear.Valid {
		errs = append(errs, validation.FieldError{Field: "publicationYear", Message: "Publication Year must be a number"})
	}
	if r.PageCount.Present && !r.PageCount.Valid {
		errs = append(errs, validation.FieldError{Field: "pageCount", Message: "Page Count must be a number"})
	}
	return errs
}

func (r *BookRequest) toBook() *entities.Book {
	return &entities.Book{
		Title:           strings.TrimSpace(r.Title),
		ISBN:            strings.TrimSpace(r.ISBN),
		PublicationYear: r.PublicationYear.Value,
		Publisher:       r.Publisher,
		CoverImage:      r.CoverImage,
		PageCount:       r.PageCount.Value,
		Language:        r.Language,
		Description:     r.Description,
	}
}

// BooksController serves the book CRUD endpoints.
type BooksController struct {
	store BookStore
	queue EnrichmentQueue
}

// NewBooksController creates a BooksController. queue may be nil when the task queue is disabled.
func NewBooksController(store BookStore, queue EnrichmentQueue) *BooksController {
	return &BooksController{store: store, queue: queue}
}

// ListBooks handles GET /books. An isbn query parameter narrows the result
// to the book with exactly that ISBN.
func (bc *BooksController) ListBooks(c *gin.Context) {
	if isbn := strings.TrimSpace(c.Query("isbn")); isbn != "" {
		book, err := bc.store.FindBookByISBN(isbn)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusOK, []entities.Book{})
		case err != nil:
			_ = c.Error(err)
		default:
			c.JSON(http.StatusOK, []entities.Book{*book})
		}
		return
	}

	list, err := bc.store.ListBooks()
	if err != nil {
		_ = c.Error(err)
		return
	}
	metrics.SetBooksTotal(len(list))
	c.JSON(http.StatusOK, list)
}

// GetBook handles GET /books/:id.
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Book not found.")
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook handles POST /books.
func (bc *BooksController) CreateBook(c *gin.Context) {
	req, ok := bindBookRequest(c)
	if !ok {
		return
	}

	book := req.toBook()
	err := bc.store.CreateBook(book, req.Authors, req.Genres)
	if errors.Is(err, books.ErrBookExists) {
		respondError(c, http.StatusBadRequest, "Book already exists.")
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	created, err := bc.store.GetBookByID(book.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	bc.enqueueEnrichment(created)
	c.JSON(http.StatusCreated, created)
}

// UpdateBook handles PUT /books/:id. Authors and genres are replaced.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindBookRequest(c)
	if !ok {
		return
	}

	book, err := bc.store.UpdateBook(id, req.toBook(), req.Authors, req.Genres)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Book not found.")
		return
	}
	if errors.Is(err, books.ErrBookExists) {
		respondError(c, http.StatusBadRequest, "Book already exists.")
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	bc.enqueueCleanup()
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /books/:id.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := bc.store.DeleteBook(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Book not found.")
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	bc.enqueueCleanup()
	c.JSON(http.StatusOK, MessageResponse{Message: "Book deleted successfully."})
}

func (bc *BooksController) enqueueEnrichment(book *entities.Book) {
	if bc.queue == nil || book.ISBN == "" {
		return
	}
	taskID, err := bc.queue.EnqueueEnrichBook(book.ID)
	if err != nil {
		log.Printf("Failed to enqueue enrichment for book %d: %v", book.ID, err)
		return
	}
	log.Printf("Enqueued enrichment task %s for book %d", taskID, book.ID)
}

// enqueueCleanup drops authors and genres that the last write left unreferenced.
func (bc *BooksController) enqueueCleanup() {
	if bc.queue == nil {
		return
	}
	if _, err := bc.queue.EnqueueCleanupOrphans(); err != nil {
		log.Printf("Failed to enqueue orphan cleanup: %v", err)
	}
}

func bindBookRequest(c *gin.Context) (*BookRequest, bool) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, []validation.FieldError{{Message: "invalid JSON body"}})
		return nil, false
	}
	if errs := req.validate(); len(errs) > 0 {
		respondValidation(c, errs)
		return nil, false
	}
	return &req, true
}
