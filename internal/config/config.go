package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider selectors. Which concrete decoder/searcher gets wired is a
// startup-time decision, never a per-request one.
const (
	DecoderOffline = "offline"
	DecoderCatalog = "catalog"
	DecoderOpenAI  = "openai"
	DecoderStub    = "stub"

	PartsPRLG   = "prlg"
	PartsScrape = "scrape"
	PartsDemo   = "demo"
)

type Config struct {
	Port     string
	LogLevel string

	TelegramToken string

	VINDecoder    string
	CatalogURL    string
	CatalogSecret string
	OpenAIKey     string
	OpenAIModel   string

	PartsProvider string
	PRLGSecret    string
	ScrapeBaseURL string

	OCRURL    string
	OCRAPIKey string

	PhotoDir        string
	ProviderTimeout time.Duration
	WorkerLimit     int64
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		VINDecoder:    getEnv("VIN_DECODER", DecoderOffline),
		CatalogURL:    getEnv("VIN_CATALOG_URL", "https://api.avtocod.ru/v1/decode"),
		CatalogSecret: os.Getenv("VIN_CATALOG_SECRET"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", ""),

		PartsProvider: getEnv("PARTS_PROVIDER", PartsDemo),
		PRLGSecret:    os.Getenv("PRLG_API_KEY"),
		ScrapeBaseURL: getEnv("PARTS_SCRAPE_URL", "https://catalog.pr-lg.ru/search"),

		OCRURL:    getEnv("OCR_URL", "https://api.ocr.space/parse/image"),
		OCRAPIKey: os.Getenv("OCR_API_KEY"),

		PhotoDir:        getEnv("PHOTO_DIR", "photos"),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 15*time.Second),
		WorkerLimit:     int64(getEnvInt("WORKER_LIMIT", 8)),
	}
}

// Validate checks that every secret the selected providers need is present.
// Absence is a startup failure, not a per-request one.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	switch c.VINDecoder {
	case DecoderOffline, DecoderStub:
	case DecoderCatalog:
		if c.CatalogSecret == "" {
			return fmt.Errorf("VIN_DECODER=catalog requires VIN_CATALOG_SECRET")
		}
	case DecoderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("VIN_DECODER=openai requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown VIN_DECODER %q", c.VINDecoder)
	}

	switch c.PartsProvider {
	case PartsDemo, PartsScrape:
	case PartsPRLG:
		if c.PRLGSecret == "" {
			return fmt.Errorf("PARTS_PROVIDER=prlg requires PRLG_API_KEY")
		}
	default:
		return fmt.Errorf("unknown PARTS_PROVIDER %q", c.PartsProvider)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
