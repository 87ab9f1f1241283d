package covers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func imageServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake image data"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewCache(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "covers")

	cache, err := NewCache(cacheDir)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	if cache.CacheDir() != cacheDir {
		t.Errorf("expected cache dir %s, got %s", cacheDir, cache.CacheDir())
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("cache directory was not created")
	}
}

func TestGetCover_EmptyURL(t *testing.T) {
	cache, _ := NewCache(t.TempDir())

	path, err := cache.GetCover(context.Background(), 1, "")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path for empty URL, got %s", path)
	}
}

func TestGetCover_FetchAndCache(t *testing.T) {
	var hits atomic.Int32
	server := imageServer(t, &hits)
	cache, _ := NewCache(t.TempDir())

	path1, err := cache.GetCover(context.Background(), 1, server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover failed: %v", err)
	}
	data, err := os.ReadFile(path1)
	if err != nil {
		t.Fatalf("cached file not readable: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("cached content = %q", data)
	}

	path2, err := cache.GetCover(context.Background(), 1, server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover (cached) failed: %v", err)
	}
	if path1 != path2 {
		t.Error("expected same path for cached request")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 upstream request, got %d", got)
	}
}

func TestGetCover_ConcurrentRequestsShareDownload(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	}))
	defer server.Close()

	cache, _ := NewCache(t.TempDir())

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetCover(context.Background(), 7, server.URL+"/c.png")
			errs <- err
		}()
	}
	for hits.Load() == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("GetCover failed: %v", err)
		}
	}
	// Late goroutines may find the file already on disk; none should download twice.
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 upstream request, got %d", got)
	}
}

func TestGetCover_CancelledCallerDoesNotAbortSharedDownload(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	}))
	defer server.Close()

	cache, _ := NewCache(t.TempDir())
	coverURL := server.URL + "/c.png"

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.GetCover(ctx, 7, coverURL)
		firstErr <- err
	}()
	for hits.Load() == 0 {
		runtime.Gosched()
	}

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled for the departed caller, got %v", err)
	}

	secondPath := make(chan string, 1)
	secondErr := make(chan error, 1)
	go func() {
		path, err := cache.GetCover(context.Background(), 7, coverURL)
		secondPath <- path
		secondErr <- err
	}()
	close(release)

	path := <-secondPath
	if err := <-secondErr; err != nil {
		t.Fatalf("waiter should be served after the first caller left: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "png" {
		t.Errorf("cached cover = %q, %v", data, err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 upstream request, got %d", got)
	}
}

func TestGetCover_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache, _ := NewCache(t.TempDir())

	if _, err := cache.GetCover(context.Background(), 1, server.URL+"/notfound.jpg"); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestGetCover_RejectsNonImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	cache, _ := NewCache(t.TempDir())

	_, err := cache.GetCover(context.Background(), 1, server.URL)
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("expected ErrNotImage, got %v", err)
	}
}

func TestInvalidateCover(t *testing.T) {
	server := imageServer(t, nil)
	cache, _ := NewCache(t.TempDir())

	path, err := cache.GetCover(context.Background(), 1, server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover failed: %v", err)
	}
	other, err := cache.GetCover(context.Background(), 2, server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover failed: %v", err)
	}

	if err := cache.InvalidateCover(1); err != nil {
		t.Fatalf("InvalidateCover failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cached file should be deleted after invalidation")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("other book's cover should survive invalidation")
	}
}

func TestCoverFilename(t *testing.T) {
	cache, _ := NewCache(t.TempDir())

	name1 := cache.coverFilename(1, "https://example.com/cover.jpg")
	if name1 != cache.coverFilename(1, "https://example.com/cover.jpg") {
		t.Error("same inputs should produce same filename")
	}
	if name1 == cache.coverFilename(1, "https://example.com/other.jpg") {
		t.Error("different URLs should produce different filenames")
	}
	if name1 == cache.coverFilename(2, "https://example.com/cover.jpg") {
		t.Error("different book IDs should produce different filenames")
	}
}
