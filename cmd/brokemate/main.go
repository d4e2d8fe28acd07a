package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/brokemate/brokemate/internal/advisor"
	"github.com/brokemate/brokemate/internal/expense"
	"github.com/brokemate/brokemate/internal/ocr"
	"github.com/brokemate/brokemate/internal/parsing"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("brokemate")
	var (
		port           = fs.IntLong("port", 8000, "HTTP server port")
		dbPath         = fs.StringLong("db", "", "BoltDB file path (empty for in-memory store)")
		ocrEngine      = fs.StringLong("ocr", "tesseract", "OCR engine: 'tesseract' or 'gemini'")
		ocrLanguage    = fs.StringLong("ocr-language", "eng", "Tesseract language")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		zeroShotURL    = fs.StringLong("zero-shot-url", "", "Zero-shot classification endpoint (empty for rule-based categories)")
		anthropicKey   = fs.StringLong("anthropic-key", "", "Anthropic API key for the spending advisor (or set ANTHROPIC_API_KEY env var)")
		anthropicModel = fs.StringLong("anthropic-model", "", "Anthropic model name")
		tokenSecret    = fs.StringLong("token-secret", "", "Secret for signing access tokens")
		tokenTTL       = fs.DurationLong("token-ttl", 30*time.Minute, "Access token lifetime")
		corsOrigins    = fs.StringLong("cors-origins", "", "Comma-separated allowed CORS origins (empty allows all)")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BROKEMATE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *tokenSecret == "" {
		slog.Error("Token secret is required. Set --token-secret flag or BROKEMATE_TOKEN_SECRET environment variable")
		os.Exit(1)
	}
	tokens, err := expense.NewTokenManager(*tokenSecret, *tokenTTL)
	if err != nil {
		slog.Error("Failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	// Initialize store
	var store expense.Store
	if *dbPath != "" {
		slog.Info("Initializing database...", "path", *dbPath)
		boltStore, err := expense.NewBoltStore(*dbPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		store = boltStore
	} else {
		slog.Info("Using in-memory store")
		store = expense.NewMemoryStore()
	}
	defer store.Close()

	// Initialize OCR engine
	var engine ocr.Engine
	switch *ocrEngine {
	case "tesseract":
		slog.Info("Initializing Tesseract OCR...", "language", *ocrLanguage)
		engine, err = ocr.NewTesseract(*ocrLanguage)
		if err != nil {
			slog.Error("Failed to initialize Tesseract", "error", err)
			os.Exit(1)
		}
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini OCR...", "model", *geminiModel)
		engine, err = ocr.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid OCR engine", "engine", *ocrEngine, "valid", "tesseract or gemini")
		os.Exit(1)
	}
	defer engine.Close()

	// Initialize the category classifier: model-backed when the endpoint
	// loads, rule-based for the rest of the process lifetime otherwise
	var classifier parsing.Classifier
	if *zeroShotURL != "" {
		zeroShot, err := parsing.NewZeroShotClassifier(*zeroShotURL)
		if err != nil {
			slog.Warn("Zero-shot classifier unavailable, using rule-based classification", "error", err)
			classifier = parsing.NewRuleClassifier()
		} else {
			slog.Info("Using zero-shot classification", "endpoint", *zeroShotURL)
			classifier = zeroShot
		}
	} else {
		slog.Info("Using rule-based classification")
		classifier = parsing.NewRuleClassifier()
	}

	// Initialize the spending advisor
	var responder advisor.Responder
	llmKey := *anthropicKey
	if llmKey == "" {
		llmKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if llmKey != "" {
		responder, err = advisor.NewLLMResponder(llmKey, *anthropicModel)
		if err != nil {
			slog.Error("Failed to initialize LLM advisor", "error", err)
			os.Exit(1)
		}
		slog.Info("Using LLM-backed spending advisor")
	} else {
		slog.Info("Using rule-based spending advisor")
		responder = advisor.NewRuleResponder()
	}

	pipeline := parsing.NewPipeline(classifier)
	service := expense.NewService(store, engine, pipeline)

	// The in-memory store starts empty every run; seed it so the API is
	// explorable without registering first
	if *dbPath == "" {
		if err := service.SeedDemo(); err != nil {
			slog.Error("Failed to seed demo data", "error", err)
			os.Exit(1)
		}
		slog.Info("Seeded demo account", "username", expense.DemoUsername)
	}

	var origins []string
	if *corsOrigins != "" {
		origins = strings.Split(*corsOrigins, ",")
	}
	server := expense.NewServer(service, responder, tokens, origins)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
