package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/avtopoisk/vin-parts-bridge/internal/bot"
	"github.com/avtopoisk/vin-parts-bridge/internal/config"
	"github.com/avtopoisk/vin-parts-bridge/internal/decode"
	"github.com/avtopoisk/vin-parts-bridge/internal/parts"
	"github.com/avtopoisk/vin-parts-bridge/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.LogLevel)

	// --- Providers ---
	var decoder decode.Decoder
	switch cfg.VINDecoder {
	case config.DecoderOffline:
		decoder = decode.NewOfflineDecoder()
	case config.DecoderCatalog:
		decoder = decode.NewCatalogDecoder(cfg.CatalogURL, cfg.CatalogSecret, logger)
	case config.DecoderOpenAI:
		decoder = decode.NewOpenAIDecoder(cfg.OpenAIKey, cfg.OpenAIModel, logger)
	case config.DecoderStub:
		logger.Warn("stub VIN decoder wired, decode results are fake")
		decoder = decode.NewStubDecoder()
	}

	var searcher parts.Searcher
	switch cfg.PartsProvider {
	case config.PartsPRLG:
		searcher = parts.NewPRLGClient(cfg.PRLGSecret, logger)
	case config.PartsScrape:
		searcher = parts.NewCatalogScraper(cfg.ScrapeBaseURL, logger)
	case config.PartsDemo:
		logger.Warn("demo parts provider wired, catalog data is static")
		searcher = parts.NewDemoSearcher()
	}

	// --- Bot module wiring ---
	store := session.NewStore()
	telegram := bot.NewTelegramOutbound(cfg.TelegramToken)
	ocr := bot.NewOCRClient(cfg.OCRURL, cfg.OCRAPIKey)
	engine := bot.NewEngine(
		store, decoder, searcher, telegram, ocr, telegram,
		logger, cfg.PhotoDir, cfg.ProviderTimeout, cfg.WorkerLimit,
	)
	dispatcher := bot.NewDispatcher(engine, logger)
	defer dispatcher.Stop()

	handler := bot.NewHandler(dispatcher, logger)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	bot.RegisterRoutes(r, handler)

	// --- health ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	logger.Info("listening",
		"port", cfg.Port,
		"vin_decoder", cfg.VINDecoder,
		"parts_provider", cfg.PartsProvider,
	)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
