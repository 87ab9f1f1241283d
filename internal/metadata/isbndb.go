package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// isbndbNotFound is the errorMessage the ISBN database sends for unknown ISBNs.
const isbndbNotFound = "Not Found"

// ISBNdbClient queries the ISBN database, the primary metadata provider.
type ISBNdbClient struct {
	fetcher httpFetcher
	baseURL string
	apiKey  string
}

func NewISBNdbClient(apiKey string, cfg ClientConfig) *ISBNdbClient {
	return &ISBNdbClient{
		fetcher: newHTTPFetcher(SourceISBNdb, cfg),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  apiKey,
	}
}

func (c *ISBNdbClient) Name() string {
	return SourceISBNdb
}

type isbndbResponse struct {
	Book         *BookRecord `json:"book"`
	ErrorMessage string      `json:"errorMessage"`
}

// FetchByISBN returns the provider's record for isbn. The response body is
// kept unchanged in Lookup.Body.
func (c *ISBNdbClient) FetchByISBN(ctx context.Context, isbn string) (*Lookup, error) {
	header := http.Header{}
	header.Set("Authorization", c.apiKey)

	status, body, err := c.fetcher.get(ctx, c.baseURL+"/book/"+url.PathEscape(isbn), header)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: isbndb: unexpected status %d", ErrTransport, status)
	}

	var resp isbndbResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: isbndb: %v", ErrMalformedResponse, err)
	}
	switch {
	case resp.ErrorMessage == isbndbNotFound:
		return nil, ErrNotFound
	case resp.ErrorMessage != "":
		return nil, fmt.Errorf("%w: isbndb: %s", ErrTransport, resp.ErrorMessage)
	case resp.Book == nil:
		return nil, fmt.Errorf("%w: isbndb: missing book", ErrMalformedResponse)
	}

	resp.Book.normalize()
	return &Lookup{
		Book:   *resp.Book,
		Source: SourceISBNdb,
		Body:   json.RawMessage(body),
	}, nil
}
