package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// databaseErrors are ORM errors caused by the request rather than the server.
var databaseErrors = []error{
	gorm.ErrDuplicatedKey,
	gorm.ErrForeignKeyViolated,
	gorm.ErrCheckConstraintViolated,
	gorm.ErrRecordNotFound,
	gorm.ErrInvalidData,
	gorm.ErrInvalidField,
	gorm.ErrPrimaryKeyRequired,
}

// ErrorMiddleware turns errors pushed with c.Error into a JSON response.
// Handlers that already wrote a response are left alone.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		if c.Writer.Written() {
			return
		}

		if isDatabaseError(err) {
			respondError(c, http.StatusBadRequest, "Database error.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal server error.")
	}
}

func isDatabaseError(err error) bool {
	for _, target := range databaseErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
