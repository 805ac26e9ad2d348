package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Success labels for metrics
const (
	SuccessTrue  = "true"
	SuccessFalse = "false"
)

var (
	// HTTP request metrics
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legalchat_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status_code"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalchat_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "endpoint", "status_code"})

	// Extraction metrics
	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legalchat_extraction_duration_seconds",
		Help:    "Duration of file text extraction in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"format", "success"})

	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalchat_extractions_total",
		Help: "Total number of file extractions",
	}, []string{"format", "success"})

	ExtractedCharacters = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legalchat_extracted_characters",
		Help:    "Number of characters produced per extraction",
		Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
	}, []string{"format"})

	// Upstream completion metrics
	CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legalchat_completion_duration_seconds",
		Help:    "Duration of upstream completion calls in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 15, 30, 60, 120},
	}, []string{"success"})

	CompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalchat_completions_total",
		Help: "Total number of upstream completion calls",
	}, []string{"success"})

	PromptLength = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legalchat_prompt_length_characters",
		Help:    "Length of assembled prompts in characters",
		Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 50000, 100000},
	}, []string{})

	ResponseLength = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legalchat_response_length_characters",
		Help:    "Length of completion responses in characters",
		Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 20000},
	}, []string{})

	// Knowledge store metrics
	KnowledgeItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "legalchat_knowledge_items",
		Help: "Current number of knowledge items held in memory",
	}, []string{})
)

// Helper functions for recording metrics with timing
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	labels := prometheus.Labels{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": strconv.Itoa(statusCode),
	}
	HTTPRequestDuration.With(labels).Observe(duration.Seconds())
	HTTPRequestsTotal.With(labels).Inc()
}

func RecordExtraction(format string, duration time.Duration, success bool, characters int) {
	successLabel := SuccessFalse
	if success {
		successLabel = SuccessTrue
	}

	ExtractionDuration.WithLabelValues(format, successLabel).Observe(duration.Seconds())
	ExtractionsTotal.WithLabelValues(format, successLabel).Inc()

	if success {
		ExtractedCharacters.WithLabelValues(format).Observe(float64(characters))
	}
}

func RecordCompletion(duration time.Duration, success bool, promptLength, responseLength int) {
	successLabel := SuccessFalse
	if success {
		successLabel = SuccessTrue
	}

	CompletionDuration.WithLabelValues(successLabel).Observe(duration.Seconds())
	CompletionsTotal.WithLabelValues(successLabel).Inc()

	if success {
		PromptLength.WithLabelValues().Observe(float64(promptLength))
		ResponseLength.WithLabelValues().Observe(float64(responseLength))
	}
}

func UpdateKnowledgeItemCount(count int) {
	KnowledgeItems.WithLabelValues().Set(float64(count))
}
