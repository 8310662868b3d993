package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"leadgen/ai"
	"leadgen/config"
	"leadgen/extractor"
	"leadgen/metrics"
	"leadgen/models"
	"leadgen/scraper"
	"leadgen/services"
	"leadgen/storage"
	"leadgen/utils"
)

var runFlags struct {
	input           string
	hashtagPlatform string
	workers         int
	csvPath         string
	xlsxPath        string
	postgres        bool
	aiProvider      string
	minScore        int
	fetchMode       string
	htmlReader      string
	metricsAddr     string
}

var runCmd = &cobra.Command{
	Use:   "run [references...]",
	Short: "Run references through the lead pipeline and export the results",
	RunE:  runPipeline,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.input, "input", "i", "", "File with one reference per line")
	f.StringVar(&runFlags.hashtagPlatform, "hashtag-platform", "", "Platform for bare #hashtags (instagram_hashtag|linkedin_hashtag)")
	f.IntVarP(&runFlags.workers, "workers", "w", 0, "Concurrent references (overrides MAX_CONCURRENCY)")
	f.StringVar(&runFlags.csvPath, "csv", "", "CSV output path (overrides CSV_OUTPUT_PATH)")
	f.StringVar(&runFlags.xlsxPath, "xlsx", "", "XLSX output path (overrides XLSX_OUTPUT_PATH)")
	f.BoolVar(&runFlags.postgres, "postgres", false, "Store leads in PostgreSQL")
	f.StringVar(&runFlags.aiProvider, "ai", "", "Completion provider (anthropic|ollama|none)")
	f.IntVar(&runFlags.minScore, "min-score", -1, "Drop leads scoring below this (overrides MIN_SCORE)")
	f.StringVar(&runFlags.fetchMode, "fetch-mode", "", "Fetcher (http|browser)")
	f.StringVar(&runFlags.htmlReader, "html-reader", "", "HTML reader (goquery|regex)")
	f.StringVar(&runFlags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")
}

// applyRunFlags lets explicitly set flags override the environment.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("hashtag-platform") {
		cfg.HashtagPlatform = models.Platform(runFlags.hashtagPlatform)
	}
	if flags.Changed("workers") {
		cfg.MaxConcurrency = runFlags.workers
	}
	if flags.Changed("csv") {
		cfg.CSVOutputPath = runFlags.csvPath
	}
	if flags.Changed("xlsx") {
		cfg.XLSXOutputPath = runFlags.xlsxPath
	}
	if flags.Changed("postgres") {
		cfg.PostgresEnabled = runFlags.postgres
	}
	if flags.Changed("ai") {
		cfg.AIProvider = runFlags.aiProvider
	}
	if flags.Changed("min-score") {
		cfg.MinScore = runFlags.minScore
	}
	if flags.Changed("fetch-mode") {
		cfg.FetchMode = runFlags.fetchMode
	}
	if flags.Changed("html-reader") {
		cfg.HTMLReader = runFlags.htmlReader
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = runFlags.metricsAddr
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	refs, err := collectReferences(args, runFlags.input)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return errors.New("no references given: pass them as arguments or with --input")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Lead generation starting ===")
	logger.Info("Config: %d references | concurrency: %d | rate: %dms | fetch: %s | ai: %s",
		len(refs), cfg.MaxConcurrency, cfg.RateLimitMs, cfg.FetchMode, cfg.AIProvider)

	fetcher, closeFetcher := buildFetcher(cfg, logger)
	defer closeFetcher()

	completer, err := buildCompleter(cfg)
	if err != nil {
		return err
	}

	sinks, err := buildSinks(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				logger.Warn("Closing sink %T: %v", s, err)
			}
		}
	}()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info("Serving metrics on %s/metrics", cfg.MetricsAddr)
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error("Metrics server: %v", err)
			}
		}()
	}

	reader, err := extractor.ReaderFor(cfg.HTMLReader)
	if err != nil {
		return err
	}

	pipeline := services.NewPipeline(services.PipelineConfig{
		Classifier:        extractor.NewClassifier(cfg.HashtagPlatform),
		Reader:            reader,
		Fetcher:           fetcher,
		Completer:         completer,
		Sinks:             sinks,
		Metrics:           m,
		Logger:            logger,
		Workers:           cfg.MaxConcurrency,
		RateLimitMs:       cfg.RateLimitMs,
		FetchTimeout:      cfg.FetchTimeout,
		CompletionTimeout: cfg.CompletionTimeout,
		MinScore:          cfg.MinScore,
	})

	report, runErr := pipeline.Run(ctx, refs)
	pipeline.Insights().Print(cmd.OutOrStdout(), report)

	if cfg.CSVOutputPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  Done. Leads → %s\n\n", cfg.CSVOutputPath)
	}
	return runErr
}

func buildFetcher(cfg *config.Config, logger *utils.Logger) (scraper.Fetcher, func()) {
	if cfg.FetchMode == config.FetchModeBrowser {
		b := scraper.NewBrowserFetcher(scraper.BrowserConfig{
			ChromeBin:  cfg.ChromeBin,
			Timeout:    cfg.FetchTimeout,
			MaxRetries: cfg.MaxRetries,
		}, logger)
		return b, func() { _ = b.Close() }
	}
	return scraper.NewHTTPFetcher(scraper.HTTPConfig{
		Timeout:    cfg.FetchTimeout,
		MaxRetries: cfg.MaxRetries,
	}, logger), func() {}
}

func buildCompleter(cfg *config.Config) (ai.Completer, error) {
	switch cfg.AIProvider {
	case config.AIProviderAnthropic:
		c, err := ai.NewAnthropicCompleter(ai.AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.AnthropicModel,
			Timeout: cfg.CompletionTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		return c, nil
	case config.AIProviderOllama:
		return ai.NewOllamaCompleter(ai.OllamaConfig{
			BaseURL: cfg.OllamaBaseURL,
			Model:   cfg.OllamaModel,
			Timeout: cfg.CompletionTimeout,
		}), nil
	default:
		return nil, nil
	}
}

// buildSinks opens every configured sink. If one fails, the ones already
// open are closed.
func buildSinks(cfg *config.Config, logger *utils.Logger) ([]storage.LeadWriter, error) {
	var sinks []storage.LeadWriter
	fail := func(err error) ([]storage.LeadWriter, error) {
		for _, s := range sinks {
			_ = s.Close()
		}
		return nil, err
	}

	if cfg.CSVOutputPath != "" {
		w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			return fail(fmt.Errorf("create CSV writer: %w", err))
		}
		sinks = append(sinks, w)
	}

	if cfg.XLSXOutputPath != "" {
		w, err := storage.NewXLSXWriter(cfg.XLSXOutputPath)
		if err != nil {
			return fail(fmt.Errorf("create XLSX writer: %w", err))
		}
		sinks = append(sinks, w)
	}

	if cfg.PostgresEnabled {
		w, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Check the POSTGRES_* settings and that the server is reachable")
			return fail(fmt.Errorf("connect to PostgreSQL: %w", err))
		}
		sinks = append(sinks, w)
	}

	if len(sinks) == 0 {
		logger.Warn("No sinks configured; leads will only appear in the report")
	}
	return sinks, nil
}
