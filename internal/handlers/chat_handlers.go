package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/riorio-tech/legalchatbot/pkg/extract"
	"github.com/riorio-tech/legalchatbot/pkg/metrics"
	"github.com/riorio-tech/legalchatbot/pkg/prompt"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

// chatRequest is the JSON body of the chat endpoint. Files can only
// arrive through the multipart path.
type chatRequest struct {
	Message           string `json:"message"`
	CustomInstruction string `json:"customInstruction"`
}

// Chat handles the single chat pipeline endpoint: body parsing,
// per-file extraction, prompt assembly and the upstream completion
// call. Every failure mode is converted to a JSON envelope; the
// deferred recover is the outermost boundary, so the endpoint never
// surfaces an unhandled fault.
func (h *Handler) Chat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				msg := fmt.Sprintf("%v", rec)
				log.Printf("Chat handler panic: %s", msg)
				h.writeEnvelope(w, http.StatusInternalServerError,
					"server error: "+msg,
					errorDebug{Error: msg + "\n" + string(debug.Stack())})
			}
		}()

		message, customInstruction, files, err := h.parseChatRequest(r)
		if err != nil {
			log.Printf("Failed to parse chat request: %v", err)
			h.writeEnvelope(w, http.StatusInternalServerError,
				"server error: "+err.Error(), errorDebug{Error: err.Error()})
			return
		}

		// Extraction runs strictly sequentially; the joined text order
		// must match the upload order.
		extractedTexts := make([]string, 0, len(files))
		for _, f := range files {
			start := time.Now()
			text := h.extractor.Extract(f)
			format := string(extract.Detect(f.MIMEType, f.Name))
			metrics.RecordExtraction(format, time.Since(start), !isSentinel(text), len(text))
			extractedTexts = append(extractedTexts, text)
		}

		if h.apiKey == "" {
			log.Printf("Chat request rejected: no API key configured")
			h.writeEnvelope(w, http.StatusInternalServerError,
				APIKeyMissingMessage, apiKeyDebug{Step: "apikey"})
			return
		}

		assembled := prompt.Assemble(message, extractedTexts, customInstruction)

		start := time.Now()
		completion, err := h.gateway.Complete(r.Context(), prompt.SystemInstruction, assembled)
		if err != nil {
			metrics.RecordCompletion(time.Since(start), false, len(assembled), 0)
			log.Printf("Completion call failed: %v", err)
			h.writeEnvelope(w, http.StatusInternalServerError,
				"server error: "+err.Error(), errorDebug{Error: err.Error()})
			return
		}
		metrics.RecordCompletion(time.Since(start), completion.OK(), len(assembled), len(completion.Content))

		dbg := pipelineDebug{
			ExtractedTexts:     extractedTexts,
			AssembledPrompt:    assembled,
			UpstreamStatus:     completion.Status,
			UpstreamStatusText: completion.StatusText,
		}

		if !completion.OK() {
			log.Printf("Upstream completion returned %d %s", completion.Status, completion.StatusText)
			h.writeEnvelope(w, http.StatusInternalServerError, completion.Content, dbg)
			return
		}

		h.writeEnvelope(w, http.StatusOK, completion.Content, dbg)
	}
}

// parseChatRequest reads message, custom instruction and attachments
// from either a multipart form or a JSON body. The JSON path carries no
// files; the browser client only picks multipart when its first
// attachment is a PDF, so other attachment mixes are silently dropped
// on the wire (kept for compatibility with the existing client).
func (h *Handler) parseChatRequest(r *http.Request) (message, customInstruction string, files []extract.File, err error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return "", "", nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}

		message = r.FormValue("message")
		customInstruction = r.FormValue("customInstruction")

		if r.MultipartForm != nil {
			for _, header := range r.MultipartForm.File["file"] {
				part, err := header.Open()
				if err != nil {
					return "", "", nil, fmt.Errorf("failed to open file part: %w", err)
				}
				data, err := io.ReadAll(part)
				part.Close()
				if err != nil {
					return "", "", nil, fmt.Errorf("failed to read file part: %w", err)
				}
				files = append(files, extract.File{
					Data:     data,
					MIMEType: header.Header.Get("Content-Type"),
					Name:     header.Filename,
				})
			}
		}
		return message, customInstruction, files, nil
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", "", nil, fmt.Errorf("failed to decode request body: %w", err)
	}
	return req.Message, req.CustomInstruction, nil, nil
}

// isSentinel reports whether an extraction result is a placeholder
// rather than real content. Used only for metrics labeling.
func isSentinel(text string) bool {
	return text == extract.SentinelPDF ||
		text == extract.SentinelUnsupported ||
		strings.HasPrefix(text, "[extraction error:")
}
