// Package scraper retrieves raw page content for classified references.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultUserAgent is sent by both fetchers.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

var (
	// ErrUnsupportedScheme is returned for targets that are not http(s).
	ErrUnsupportedScheme = errors.New("scraper: unsupported URL scheme")
	// ErrHTTPStatus is returned for non-2xx responses.
	ErrHTTPStatus = errors.New("scraper: unexpected HTTP status")
	// ErrBinaryContent is returned when the response is not text.
	ErrBinaryContent = errors.New("scraper: response is not text")
)

// Fetcher retrieves the text body of a URL. Implementations follow redirects
// and honour ctx for their timeout.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, target string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, target string) (string, error) {
	return f(ctx, target)
}

func checkTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("scraper: parse %q: %w", target, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") ||
		strings.Contains(ct, "html") ||
		strings.Contains(ct, "json") ||
		strings.Contains(ct, "xml")
}
