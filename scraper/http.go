package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadgen/utils"
)

// HTTPConfig configures an HTTPFetcher.
type HTTPConfig struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string
}

// HTTPFetcher fetches pages with a plain HTTP client.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	retry     *utils.RetryConfig
	logger    *utils.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. The client follows up to 10
// redirects, the net/http default.
func NewHTTPFetcher(cfg HTTPConfig, logger *utils.Logger) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries + 1,
			BaseDelay:   cfg.RetryDelay,
			Logger:      logger,
		},
		logger: logger,
	}
}

// Fetch returns the body of target. 4xx responses, bad schemes and binary
// content are not retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (string, error) {
	if err := checkTarget(target); err != nil {
		return "", err
	}

	var body string
	err := f.retry.Do(ctx, "fetch "+target, func() error {
		b, err := f.fetchOnce(ctx, target)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return "", err
	}

	f.logger.Debug("[fetch] %s -> %d bytes", target, len(body))
	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", utils.Permanent(err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("%w: %d from %s", ErrHTTPStatus, resp.StatusCode, target)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", statusErr
		}
		return "", utils.Permanent(statusErr)
	}

	if ct := resp.Header.Get("Content-Type"); !isTextual(ct) {
		return "", utils.Permanent(fmt.Errorf("%w: %s", ErrBinaryContent, ct))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(raw), nil
}
