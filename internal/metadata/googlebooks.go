package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// GoogleBooksClient queries the public books catalog, the secondary provider.
type GoogleBooksClient struct {
	fetcher httpFetcher
	baseURL string
}

func NewGoogleBooksClient(cfg ClientConfig) *GoogleBooksClient {
	return &GoogleBooksClient{
		fetcher: newHTTPFetcher(SourceGoogleBooks, cfg),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

func (c *GoogleBooksClient) Name() string {
	return SourceGoogleBooks
}

type volumesResponse struct {
	TotalItems *int `json:"totalItems"`
	Items      []struct {
		VolumeInfo *volumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	Publisher           string   `json:"publisher"`
	PublishedDate       string   `json:"publishedDate"`
	Description         string   `json:"description"`
	PageCount           int      `json:"pageCount"`
	Language            string   `json:"language"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
	ImageLinks struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

// FetchByISBN maps the first matching volume into a BookRecord. Subjects are
// always empty for this provider.
func (c *GoogleBooksClient) FetchByISBN(ctx context.Context, isbn string) (*Lookup, error) {
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)

	status, body, err := c.fetcher.get(ctx, c.baseURL+"/volumes?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: googlebooks: unexpected status %d", ErrTransport, status)
	}

	var resp volumesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: googlebooks: %v", ErrMalformedResponse, err)
	}
	if resp.TotalItems == nil {
		return nil, fmt.Errorf("%w: googlebooks: missing totalItems", ErrMalformedResponse)
	}
	if *resp.TotalItems == 0 {
		return nil, ErrNotFound
	}
	if len(resp.Items) == 0 || resp.Items[0].VolumeInfo == nil {
		return nil, fmt.Errorf("%w: googlebooks: missing volumeInfo", ErrMalformedResponse)
	}

	info := resp.Items[0].VolumeInfo
	record := BookRecord{
		Title:         info.Title,
		Authors:       info.Authors,
		Publisher:     info.Publisher,
		DatePublished: PublishedDate(info.PublishedDate),
		Pages:         info.PageCount,
		Language:      info.Language,
		Subjects:      []string{},
	}
	record.normalize()

	out, err := json.Marshal(struct {
		Book BookRecord `json:"book"`
	}{record})
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	// Extras for enrichment only; not part of the served body.
	record.Synopsis = info.Description
	record.Image = secureURL(info.ImageLinks.Thumbnail)
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_10":
			record.ISBN = id.Identifier
		case "ISBN_13":
			record.ISBN13 = id.Identifier
		}
	}

	return &Lookup{
		Book:   record,
		Source: SourceGoogleBooks,
		Body:   json.RawMessage(out),
	}, nil
}

// secureURL upgrades plain http image links, which the catalog still hands out.
func secureURL(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
