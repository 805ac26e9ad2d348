// Package chatclient implements the chat conversation state machine
// used by the CLI: an in-memory chronological message list over the
// server's chat endpoint.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FailureMessage is appended as the AI reply when the request cannot be
// completed locally (transport failure, bad response body).
const FailureMessage = "AI応答の取得に失敗しました。"

// Role distinguishes the two sides of the conversation.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Attachment is a file queued for upload with a message.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Message is one entry in the conversation, chronologically ordered.
type Message struct {
	ID          string
	Role        Role
	Content     string
	Timestamp   time.Time
	Attachments []Attachment
}

// Debug mirrors the server's debug envelope for inspection.
type Debug struct {
	ExtractedTexts     []string `json:"extractedTexts"`
	AssembledPrompt    string   `json:"assembledPrompt"`
	UpstreamStatus     int      `json:"upstreamStatus"`
	UpstreamStatusText string   `json:"upstreamStatusText"`
	Step               string   `json:"step"`
	Error              string   `json:"error"`
}

type envelope struct {
	Result struct {
		Content string `json:"content"`
	} `json:"result"`
	Debug Debug `json:"debug"`
}

// Conversation is the chat state machine. Messages only ever grow in
// chronological order; every send attempt appends exactly one user
// message and exactly one AI message, whatever the outcome.
type Conversation struct {
	endpoint   string
	httpClient *http.Client

	mu        sync.Mutex
	messages  []Message
	loading   bool
	lastDebug *Debug
}

// New creates a conversation against the server's chat endpoint, e.g.
// "http://localhost:8080/api/chat".
func New(endpoint string) *Conversation {
	return &Conversation{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
}

// Send posts one message with optional attachments and custom
// instruction. It is a no-op when all three are empty. The returned
// message is the appended AI reply; on any local failure the reply
// carries the fixed failure text instead of an answer.
//
// Attachments only reach the server when the first one is PDF-typed:
// that is the only case that takes the multipart path, and the JSON
// path carries no files. The server in turn rejects PDFs with a
// placeholder, so most attachment mixes never leave the client. This
// mirrors the browser client's behavior rather than fixing it.
func (c *Conversation) Send(ctx context.Context, text, customInstruction string, attachments []Attachment) (*Message, error) {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 && strings.TrimSpace(customInstruction) == "" {
		return nil, nil
	}

	content := text
	if customInstruction != "" {
		content += "\n【追加プロンプト】" + customInstruction
	}

	c.mu.Lock()
	c.loading = true
	c.append(Message{
		Role:        RoleUser,
		Content:     content,
		Attachments: attachments,
	})
	c.mu.Unlock()

	reply, dbg := c.request(ctx, text, customInstruction, attachments)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.lastDebug = dbg
	ai := c.append(Message{Role: RoleAI, Content: reply})
	return &ai, nil
}

// request performs the HTTP call and never fails: local errors collapse
// into the fixed failure message.
func (c *Conversation) request(ctx context.Context, text, customInstruction string, attachments []Attachment) (string, *Debug) {
	var req *http.Request
	var err error

	if len(attachments) > 0 && attachments[0].MIMEType == "application/pdf" {
		req, err = c.multipartRequest(ctx, text, customInstruction, attachments)
	} else {
		req, err = c.jsonRequest(ctx, text, customInstruction)
	}
	if err != nil {
		return FailureMessage, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return FailureMessage, nil
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return FailureMessage, nil
	}
	return env.Result.Content, &env.Debug
}

func (c *Conversation) jsonRequest(ctx context.Context, text, customInstruction string) (*http.Request, error) {
	body, err := json.Marshal(map[string]string{
		"message":           text,
		"customInstruction": customInstruction,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Conversation) multipartRequest(ctx context.Context, text, customInstruction string, attachments []Attachment) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("message", text); err != nil {
		return nil, err
	}
	if err := writer.WriteField("customInstruction", customInstruction); err != nil {
		return nil, err
	}
	for _, a := range attachments {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{
			fmt.Sprintf(`form-data; name="file"; filename=%q`, a.Name),
		}
		contentType := a.MIMEType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header["Content-Type"] = []string{contentType}
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, bytes.NewReader(a.Data)); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// append adds a message with a time-derived ID. Callers hold the lock.
func (c *Conversation) append(m Message) Message {
	m.ID = strconv.FormatInt(time.Now().UnixNano(), 10)
	m.Timestamp = time.Now()
	c.messages = append(c.messages, m)
	return m
}

// Messages returns a chronological snapshot of the conversation.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Loading reports whether a send is in flight. There is no guard
// against overlapping sends.
func (c *Conversation) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastDebug returns the debug envelope from the most recent send, or
// nil when the request never produced one.
func (c *Conversation) LastDebug() *Debug {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastDebug
}
