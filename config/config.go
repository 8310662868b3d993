package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"leadgen/models"
)

// Fetch modes.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// HTML readers.
const (
	HTMLReaderGoquery = "goquery"
	HTMLReaderRegex   = "regex"
)

// AI providers.
const (
	AIProviderAnthropic = "anthropic"
	AIProviderOllama    = "ollama"
	AIProviderNone      = "none"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	FetchTimeout   time.Duration
	FetchMode      string
	ChromeBin      string
	HTMLReader     string

	HashtagPlatform models.Platform

	AIProvider        string
	AnthropicAPIKey   string
	AnthropicModel    string
	OllamaBaseURL     string
	OllamaModel       string
	CompletionTimeout time.Duration

	CSVOutputPath  string
	XLSXOutputPath string
	MinScore       int
	MetricsAddr    string

	LogLevel  string
	LogFormat string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "leadgen"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "leadgen"),
		PostgresDB:       getEnv("POSTGRES_DB", "leads_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchMode:      strings.ToLower(getEnv("FETCH_MODE", FetchModeHTTP)),
		ChromeBin:      getEnv("CHROME_BIN", ""),
		HTMLReader:     strings.ToLower(getEnv("HTML_READER", HTMLReaderGoquery)),

		HashtagPlatform: models.Platform(strings.ToLower(getEnv("HASHTAG_PLATFORM", string(models.PlatformInstagramHashtag)))),

		AIProvider:        strings.ToLower(getEnv("AI_PROVIDER", AIProviderNone)),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3.2"),
		CompletionTimeout: getEnvDuration("COMPLETION_TIMEOUT", 60*time.Second),

		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "./output/leads.csv"),
		XLSXOutputPath: getEnv("XLSX_OUTPUT_PATH", ""),
		MinScore:       getEnvInt("MIN_SCORE", 0),
		MetricsAddr:    getEnv("METRICS_ADDR", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

// Validate rejects enum values the pipeline does not understand.
func (c *Config) Validate() error {
	switch c.FetchMode {
	case FetchModeHTTP, FetchModeBrowser:
	default:
		return fmt.Errorf("config: unknown FETCH_MODE %q", c.FetchMode)
	}

	switch c.HTMLReader {
	case HTMLReaderGoquery, HTMLReaderRegex:
	default:
		return fmt.Errorf("config: unknown HTML_READER %q", c.HTMLReader)
	}

	switch c.AIProvider {
	case AIProviderAnthropic, AIProviderOllama, AIProviderNone:
	default:
		return fmt.Errorf("config: unknown AI_PROVIDER %q", c.AIProvider)
	}

	if !c.HashtagPlatform.IsHashtag() {
		return fmt.Errorf("config: HASHTAG_PLATFORM must be %q or %q, got %q",
			models.PlatformInstagramHashtag, models.PlatformLinkedInHashtag, c.HashtagPlatform)
	}

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("config: MAX_CONCURRENCY must be at least 1, got %d", c.MaxConcurrency)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
