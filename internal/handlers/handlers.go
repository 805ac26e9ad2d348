// Package handlers wires the extraction → prompt → completion pipeline
// to HTTP, together with the knowledge API and the two web pages.
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riorio-tech/legalchatbot/internal/knowledge"
	"github.com/riorio-tech/legalchatbot/pkg/chat"
	"github.com/riorio-tech/legalchatbot/pkg/extract"
	"github.com/riorio-tech/legalchatbot/pkg/metrics"
)

// APIKeyMissingMessage is returned when no upstream credential is
// configured. The request fails before any upstream work is attempted.
const APIKeyMissingMessage = "OpenAI APIキーが設定されていません。"

// Gateway is the upstream completion dependency. Tests substitute a
// stub to observe call counts and control responses.
type Gateway interface {
	Complete(ctx context.Context, systemInstruction, userPrompt string) (*chat.Completion, error)
}

// Handler carries the shared pipeline dependencies.
type Handler struct {
	extractor *extract.Extractor
	gateway   Gateway
	apiKey    string
	store     *knowledge.Store
	version   string
}

// New creates a handler with the given pipeline dependencies.
func New(extractor *extract.Extractor, gateway Gateway, apiKey string, store *knowledge.Store) *Handler {
	return &Handler{
		extractor: extractor,
		gateway:   gateway,
		apiKey:    apiKey,
		store:     store,
		version:   "dev",
	}
}

// NewWithVersion creates a handler reporting the given build version.
func NewWithVersion(extractor *extract.Extractor, gateway Gateway, apiKey string, store *knowledge.Store, version string) *Handler {
	h := New(extractor, gateway, apiKey, store)
	h.version = version
	return h
}

// Envelope is the JSON response shape of the chat endpoint. Debug is
// always populated; its shape depends on how far the pipeline got.
type Envelope struct {
	Result Result `json:"result"`
	Debug  any    `json:"debug"`
}

type Result struct {
	Content string `json:"content"`
}

// pipelineDebug echoes the intermediate pipeline state back to the
// caller. There is no redaction: this service is a single-user internal
// tool and the debug panel renders these fields directly.
type pipelineDebug struct {
	ExtractedTexts     []string `json:"extractedTexts"`
	AssembledPrompt    string   `json:"assembledPrompt"`
	UpstreamStatus     int      `json:"upstreamStatus"`
	UpstreamStatusText string   `json:"upstreamStatusText"`
}

type apiKeyDebug struct {
	Step string `json:"step"`
}

type errorDebug struct {
	Error string `json:"error"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, status int, content string, debug any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Result: Result{Content: content}, Debug: debug}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: errMsg, Message: message}); err != nil {
		log.Printf("Error encoding error response: %v", err)
	}
}

// Health reports service liveness.
func (h *Handler) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"version":   h.version,
		}); err != nil {
			log.Printf("Error encoding response: %v", err)
		}
	}
}

// Metrics exposes the Prometheus registry.
func (h *Handler) Metrics() http.HandlerFunc {
	return promhttp.Handler().ServeHTTP
}

// LoggingMiddleware logs HTTP requests with details and records Prometheus metrics
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer that captures status code
		wrappedWriter := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		log.Printf("[%s] %s %s - User-Agent: %s",
			r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent())

		next.ServeHTTP(wrappedWriter, r)

		duration := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, r.URL.Path, wrappedWriter.statusCode, duration)

		log.Printf("[%s] %s %s - %d - %v",
			r.Method, r.URL.Path, r.RemoteAddr, wrappedWriter.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
