package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"leadgen/utils"
)

// BrowserConfig configures a BrowserFetcher.
type BrowserConfig struct {
	ChromeBin  string
	Timeout    time.Duration
	Settle     time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// BrowserFetcher renders pages in headless Chrome and returns the final DOM.
// One browser process is shared; every Fetch opens its own tab.
type BrowserFetcher struct {
	cfg    BrowserConfig
	logger *utils.Logger
	retry  *utils.RetryConfig

	once        sync.Once
	startErr    error
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
}

// NewBrowserFetcher creates a BrowserFetcher. Chrome is not started until
// the first Fetch.
func NewBrowserFetcher(cfg BrowserConfig, logger *utils.Logger) *BrowserFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &BrowserFetcher{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries + 1,
			BaseDelay:   cfg.RetryDelay,
			Logger:      logger,
		},
	}
}

func (b *BrowserFetcher) start() {
	chromeBin := b.cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	b.logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(DefaultUserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	browserCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	b.browserCtx = browserCtx
	b.cancelAlloc = cancelAlloc
	b.cancelTab = cancelTab

	// Launch now so later tabs attach to this browser instead of owning one.
	if err := chromedp.Run(browserCtx); err != nil {
		b.startErr = fmt.Errorf("start browser: %w", err)
	}
}

// Fetch navigates to target and returns the rendered outer HTML.
func (b *BrowserFetcher) Fetch(ctx context.Context, target string) (string, error) {
	if err := checkTarget(target); err != nil {
		return "", err
	}
	b.once.Do(b.start)
	if b.startErr != nil {
		return "", b.startErr
	}

	var html string
	err := b.retry.Do(ctx, "render "+target, func() error {
		tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
		defer cancelTab()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.cfg.Timeout)
		defer cancelTimeout()

		// Tie the tab to the caller so shutdown closes it.
		stop := context.AfterFunc(ctx, cancelTab)
		defer stop()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(target),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(b.cfg.Settle),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
	})
	if err != nil {
		return "", fmt.Errorf("browser fetch: %w", err)
	}

	b.logger.Debug("[browser] %s -> %d bytes", target, len(html))
	return html, nil
}

// Close shuts the browser down. It is safe to call when Chrome never started.
func (b *BrowserFetcher) Close() error {
	if b.cancelTab != nil {
		b.cancelTab()
	}
	if b.cancelAlloc != nil {
		b.cancelAlloc()
	}
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
