package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// ISBNResolver resolves an ISBN to a book description.
type ISBNResolver interface {
	Lookup(ctx context.Context, isbn string) (*metadata.Lookup, error)
}

// LookupController serves ISBN metadata lookups.
type LookupController struct {
	resolver ISBNResolver
}

func NewLookupController(resolver ISBNResolver) *LookupController {
	return &LookupController{resolver: resolver}
}

// LookupISBN handles GET /books/isbn-query/:isbn.
//
// The ISBN is validated here and then handed to the resolver exactly as it
// appeared in the path. The response body is the provider's JSON as cached.
func (lc *LookupController) LookupISBN(c *gin.Context) {
	isbn := c.Param("isbn")
	if errs := validation.Var("isbn", isbn, "isbn"); errs != nil {
		respondValidation(c, errs)
		return
	}

	lookup, err := lc.resolver.Lookup(c.Request.Context(), isbn)
	if errors.Is(err, metadata.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Book not found.")
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", lookup.Body)
}
