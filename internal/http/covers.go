package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// CoverCache returns a local file for a book's cover image.
type CoverCache interface {
	GetCover(ctx context.Context, bookID uint, coverURL string) (string, error)
}

// BookGetter loads a single book.
type BookGetter interface {
	GetBookByID(id uint) (*entities.Book, error)
}

// CoversController handles book cover requests.
type CoversController struct {
	cache CoverCache
	books BookGetter
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache CoverCache, books BookGetter) *CoversController {
	return &CoversController{cache: cache, books: books}
}

// GetCover handles GET /books/:id/cover.
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.books.GetBookByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Book not found.")
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	if book.CoverImage == "" {
		respondError(c, http.StatusNotFound, "Book has no cover.")
		return
	}

	cachePath, err := cc.cache.GetCover(c.Request.Context(), id, book.CoverImage)
	if err != nil || cachePath == "" {
		// Fall back to the remote image.
		log.Printf("Cover cache miss for book %d: %v", id, err)
		c.Redirect(http.StatusTemporaryRedirect, book.CoverImage)
		return
	}

	c.File(cachePath)
}
