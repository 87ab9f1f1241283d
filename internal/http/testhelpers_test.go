package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

type fakeResolver struct {
	lookup *metadata.Lookup
	err    error
	calls  []string
}

func (f *fakeResolver) Lookup(ctx context.Context, isbn string) (*metadata.Lookup, error) {
	f.calls = append(f.calls, isbn)
	return f.lookup, f.err
}

type testServer struct {
	router   *gin.Engine
	repo     *books.Repository
	service  *auth.Service
	resolver *fakeResolver
}

func newTestServer(t *testing.T, mode config.AuthMode) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(config.Database{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authCfg := config.Auth{
		Mode:        mode,
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		BcryptCost:  4,
	}
	service, err := auth.NewService(users.NewRepository(db.DB), authCfg)
	require.NoError(t, err)
	authController := auth.NewAuthController(service, authCfg)
	t.Cleanup(authController.Stop)

	repo := books.NewRepository(db.DB)
	resolver := &fakeResolver{err: metadata.ErrNotFound}

	router := NewRouter(RouterConfig{
		Version:            "test",
		CORSAllowedOrigins: []string{"*"},
		Database:           db,
		Books:              repo,
		Resolver:           resolver,
		AuthService:        service,
		AuthController:     authController,
		AuthConfig:         authCfg,
	})

	return &testServer{router: router, repo: repo, service: service, resolver: resolver}
}

// token registers a user and returns a bearer token for them.
func (s *testServer) token(t *testing.T) string {
	t.Helper()
	_, err := s.service.Register("reader@example.com", "password123", "", "")
	require.NoError(t, err)
	token, _, err := s.service.Login("reader@example.com", "password123")
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeErrors(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	fields := make([]string, 0, len(resp.Errors))
	for _, e := range resp.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}
