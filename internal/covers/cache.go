// Package covers keeps a local copy of book cover images so they are
// downloaded from the remote host only once.
package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const maxCoverSize = 10 << 20

// ErrNotImage is returned when the cover URL serves something other than an image.
var ErrNotImage = errors.New("cover URL did not return an image")

// Cache stores downloaded covers under a directory, one file per book and URL.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
	group      singleflight.Group
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetCover returns the path of the cached cover for a book, downloading it
// first when needed. An empty coverURL yields an empty path and no error.
func (c *Cache) GetCover(ctx context.Context, bookID uint, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	cachePath := filepath.Join(c.cacheDir, c.coverFilename(bookID, coverURL))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	// Concurrent requests for the same cover share one download. A caller
	// that gives up stops waiting but does not abort the download for the rest.
	ch := c.group.DoChan(cachePath, func() (any, error) {
		if _, err := os.Stat(cachePath); err == nil {
			return nil, nil
		}
		return nil, c.fetchAndCache(context.WithoutCancel(ctx), coverURL, cachePath)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return cachePath, nil
	}
}

// InvalidateCover removes every cached cover for a book.
func (c *Cache) InvalidateCover(bookID uint) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("cover_%d_*", bookID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}

func (c *Cache) coverFilename(bookID uint, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%d_%x.img", bookID, hash[:8])
}

func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Bookshelf/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: %s", ErrNotImage, ct)
	}

	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		return err
	}
	if n > maxCoverSize {
		return fmt.Errorf("cover exceeds %d bytes", maxCoverSize)
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, cachePath)
}
