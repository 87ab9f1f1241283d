package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mrlokans/bookshelf/internal/metrics"
)

const userAgent = "Bookshelf/1.0 (https://github.com/mrlokans/bookshelf)"

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 4 << 20

// ClientConfig holds the transport settings shared by provider clients.
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables limiting
}

type httpFetcher struct {
	provider   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newHTTPFetcher(provider string, cfg ClientConfig) httpFetcher {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return httpFetcher{
		provider:   provider,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// get performs a single GET. Any failure to obtain a response is an ErrTransport;
// the status code is left for the caller to interpret.
func (f httpFetcher) get(ctx context.Context, url string, header http.Header) (int, []byte, error) {
	start := time.Now()

	if err := f.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrTransport, f.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s: create request: %v", ErrTransport, f.provider, err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.ObserveProviderRequest(f.provider, "error", time.Since(start))
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrTransport, f.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.ObserveProviderRequest(f.provider, "error", time.Since(start))
		return 0, nil, fmt.Errorf("%w: %s: read body: %v", ErrTransport, f.provider, err)
	}

	metrics.ObserveProviderRequest(f.provider, fmt.Sprintf("%dxx", resp.StatusCode/100), time.Since(start))
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
