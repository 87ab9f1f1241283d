package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"unique violation", gorm.ErrDuplicatedKey, http.StatusBadRequest, `{"error":"Database error."}`},
		{"wrapped foreign key violation", fmt.Errorf("save: %w", gorm.ErrForeignKeyViolated), http.StatusBadRequest, `{"error":"Database error."}`},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, `{"error":"Internal server error."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorMiddleware())
			router.GET("/", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestErrorMiddleware_KeepsWrittenResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"error": "short and stout"})
		_ = c.Error(errors.New("logged only"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.JSONEq(t, `{"error":"short and stout"}`, w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(origins []string) *gin.Engine {
		router := gin.New()
		router.Use(CORSMiddleware(origins))
		router.GET("/books", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("wildcard allows any origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		newRouter([]string{"*"}).ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set("Origin", "https://books.example.com")
		w := httptest.NewRecorder()
		newRouter([]string{"https://books.example.com"}).ServeHTTP(w, req)

		assert.Equal(t, "https://books.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		newRouter([]string{"https://books.example.com"}).ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/books", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		newRouter([]string{"*"}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})
}
