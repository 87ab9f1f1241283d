package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T, googleURL string) {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("ISBNDB_API_KEY", "")
	t.Setenv("GOOGLE_BOOKS_BASE_URL", googleURL)
	t.Setenv("LOOKUP_REQUESTS_PER_SECOND", "0")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("JWT_SECRET", "cli-secret")
}

func TestLookupCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "isbn:9780140449136" {
			_, _ = w.Write([]byte(`{"totalItems":0}`))
			return
		}
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"volumeInfo":{"title":"Crime and Punishment","authors":["Fyodor Dostoevsky"],"publishedDate":"2003"}}]}`))
	}))
	defer server.Close()
	setupEnv(t, server.URL)

	out, err := execute(t, "lookup", "9780140449136")
	require.NoError(t, err)
	assert.Contains(t, out, `"title":"Crime and Punishment"`)
	assert.Contains(t, out, `"authors":["Fyodor Dostoevsky"]`)

	_, err = execute(t, "lookup", "9780306406157")
	assert.EqualError(t, err, "no book found for ISBN 9780306406157")
}

func TestLookupCommand_InvalidISBN(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	_, err := execute(t, "lookup", "12345")
	assert.Error(t, err)

	_, err = execute(t, "lookup")
	assert.Error(t, err)
}

func TestCreateUserCommand(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	out, err := execute(t, "create-user", "--email", "admin@example.com", "--password", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user 1 (admin@example.com)")

	_, err = execute(t, "create-user", "--email", "admin@example.com", "--password", "password123")
	assert.EqualError(t, err, "a user with email admin@example.com already exists")

	_, err = execute(t, "create-user", "--email", "other@example.com")
	assert.Error(t, err)
}

func TestEnrichCommand_Args(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	_, err := execute(t, "enrich")
	assert.Error(t, err)

	_, err = execute(t, "enrich", "--all", "3")
	assert.Error(t, err)

	_, err = execute(t, "enrich", "abc")
	assert.EqualError(t, err, `invalid book ID "abc"`)
}
