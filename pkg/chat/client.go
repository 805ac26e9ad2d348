// Package chat is the gateway to the remote chat-completion API.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// FallbackMessage is returned when the API answers 2xx but the response
// carries no usable choice.
const FallbackMessage = "AI応答の取得に失敗しました。"

// Client sends non-streaming completion requests with fixed generation
// parameters. Requests are single-attempt: no retry, no backoff, and no
// client-side timeout on the upstream call.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewClient creates a completion client. Empty baseURL and model fall
// back to the OpenAI endpoint and gpt-4o.
func NewClient(apiKey, baseURL, model string, temperature float64, maxTokens int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{},
	}
}

// completionRequest is the chat completions request body.
type completionRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// completionResponse is the subset of the chat completions response the
// gateway reads.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Completion is the outcome of one upstream call. Content is either the
// first choice's text or a fixed failure message; Status and StatusText
// always carry the upstream HTTP result for the debug envelope.
type Completion struct {
	Content    string
	Status     int
	StatusText string
}

// OK reports whether the upstream call returned 2xx.
func (c *Completion) OK() bool {
	return c.Status >= 200 && c.Status < 300
}

// Complete sends one system+user conversation to the completions
// endpoint. A non-2xx upstream response is not an error: the returned
// Completion embeds the status, status text and raw body in its content.
// Errors are reserved for transport and encoding failures.
func (c *Client) Complete(ctx context.Context, systemInstruction, userPrompt string) (*Completion, error) {
	body := completionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []Message{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: userPrompt},
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send completion request: %w", err)
	}
	defer resp.Body.Close()

	statusText := http.StatusText(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read error response: %w", readErr)
		}
		return &Completion{
			Content:    fmt.Sprintf("OpenAI APIリクエストに失敗: %d %s\n%s", resp.StatusCode, statusText, string(raw)),
			Status:     resp.StatusCode,
			StatusText: statusText,
		}, nil
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}

	content := FallbackMessage
	if len(parsed.Choices) > 0 && parsed.Choices[0].Message.Content != "" {
		content = parsed.Choices[0].Message.Content
	}
	return &Completion{
		Content:    content,
		Status:     resp.StatusCode,
		StatusText: statusText,
	}, nil
}
