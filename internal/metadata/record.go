package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound means neither provider knows the ISBN.
	ErrNotFound = errors.New("book not found")
	// ErrTransport covers network failures, timeouts and unexpected upstream statuses.
	ErrTransport = errors.New("metadata provider unavailable")
	// ErrMalformedResponse is a transport error for bodies that don't match the provider's shape.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrTransport)
)

// Provider names, also used as the Lookup source and metrics label.
const (
	SourceISBNdb      = "isbndb"
	SourceGoogleBooks = "googlebooks"
)

// BookRecord is the normalized description of a book. Field names follow
// the ISBN database so primary responses decode into it directly.
type BookRecord struct {
	Title         string        `json:"title,omitempty"`
	Authors       []string      `json:"authors"`
	Publisher     string        `json:"publisher,omitempty"`
	DatePublished PublishedDate `json:"date_published,omitempty"`
	Pages         int           `json:"pages,omitempty"`
	Language      string        `json:"language,omitempty"`
	Subjects      []string      `json:"subjects"`

	// Only filled when the provider has them.
	Image    string `json:"image,omitempty"`
	Synopsis string `json:"synopsis,omitempty"`
	ISBN     string `json:"isbn,omitempty"`
	ISBN13   string `json:"isbn13,omitempty"`
}

// UnmarshalJSON decodes a record, reading pages leniently: some primary
// records carry it as a string. An unreadable page count is left at 0.
func (r *BookRecord) UnmarshalJSON(data []byte) error {
	type plain BookRecord
	aux := struct {
		*plain
		Pages json.RawMessage `json:"pages"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	pages, err := parsePages(aux.Pages)
	if err != nil {
		return err
	}
	r.Pages = pages
	return nil
}

func parsePages(data json.RawMessage) (int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}

	var text string
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(data)
	default:
		return 0, fmt.Errorf("pages: unexpected value %s", data)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0, nil
	}
	return int(f), nil
}

// normalize replaces missing lists with empty ones.
func (r *BookRecord) normalize() {
	if r.Authors == nil {
		r.Authors = []string{}
	}
	if r.Subjects == nil {
		r.Subjects = []string{}
	}
}

// Lookup is a successful resolution. Body is the JSON document served to
// clients: the primary provider's body verbatim, or {"book": record} built
// from the secondary provider. Lookups are shared through the cache and
// must not be modified by callers.
type Lookup struct {
	Book   BookRecord
	Source string
	Body   json.RawMessage
}

// PublishedDate holds a publication date as the provider wrote it.
// Providers send either a string ("2003", "2003-05-01") or a bare year number.
type PublishedDate string

func (d *PublishedDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = PublishedDate(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("date_published: %w", err)
	}
	*d = PublishedDate(n.String())
	return nil
}

// Year extracts a four-digit year, or 0 when there is none.
func (d PublishedDate) Year() int {
	return extractYear(string(d))
}

func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"2006-01",
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
		"January 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	// Last resort: first run of 4 digits that looks like a year
	for i := 0; i <= len(dateStr)-4; i++ {
		if year, err := strconv.Atoi(dateStr[i : i+4]); err == nil && year > 1000 && year < 3000 {
			return year
		}
	}
	return 0
}
