package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/riorio-tech/legalchatbot/internal/handlers"
	"github.com/riorio-tech/legalchatbot/internal/knowledge"
	"github.com/riorio-tech/legalchatbot/pkg/chat"
	"github.com/riorio-tech/legalchatbot/pkg/config"
	"github.com/riorio-tech/legalchatbot/pkg/extract"
)

// version is set during build time via ldflags
var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "Config file path (YAML or JSON)")
		host        = flag.String("host", "", "Server host (overrides config)")
		port        = flag.Int("port", 0, "Server port (overrides config)")
		model       = flag.String("model", "", "Completion model (overrides config)")
		showVersion = flag.Bool("version", false, "Show version")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("legalchat-server version %s\n", version)
		return nil
	}

	// .env is optional; the credential may come from the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override with command line flags
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *model != "" {
		cfg.OpenAI.Model = *model
	}

	apiKey := config.APIKey()
	if apiKey == "" {
		log.Printf("Warning: %s is not set; chat requests will be rejected", config.APIKeyEnv)
	}

	extractor := extract.New(cfg.OCR.Languages...)
	gateway := chat.NewClient(apiKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model,
		cfg.OpenAI.Temperature, cfg.OpenAI.MaxTokens)
	store := knowledge.NewStore()

	handler := handlers.NewWithVersion(extractor, gateway, apiKey, store, version)

	router := mux.NewRouter()
	router.Handle("/api/chat", handler.Chat()).Methods(http.MethodPost)
	router.Handle("/api/knowledge", handler.Knowledge()).Methods(http.MethodGet, http.MethodPost)
	router.Handle("/api/knowledge/{id}", handler.DeleteKnowledge()).Methods(http.MethodDelete)
	router.Handle("/api/health", handler.Health()).Methods(http.MethodGet)
	router.Handle("/api/metrics", handler.Metrics()).Methods(http.MethodGet)
	router.Handle("/knowledge", handler.KnowledgePage()).Methods(http.MethodGet)
	router.PathPrefix("/").Handler(handler.ChatPage()).Methods(http.MethodGet)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     handlers.LoggingMiddleware(cors.Default().Handler(router)),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: the upstream completion call has no bound,
		// and a slow answer must not cut the response off mid-write.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Printf("Starting legalchat-server version %s on %s", version, addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
