package chatclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"result":{"content":%q},"debug":{"extractedTexts":[],"assembledPrompt":"p","upstreamStatus":200,"upstreamStatusText":"OK"}}`, content)
	}))
}

func TestSendEmptyIsNoop(t *testing.T) {
	conv := New("http://localhost:0/api/chat")

	reply, err := conv.Send(context.Background(), "   ", "", nil)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != nil {
		t.Errorf("Expected nil reply for an empty send, got %+v", reply)
	}
	if len(conv.Messages()) != 0 {
		t.Errorf("Empty send must not append messages, got %d", len(conv.Messages()))
	}
}

func TestSendSuccess(t *testing.T) {
	server := okServer(t, "第3条に注意してください。")
	defer server.Close()

	conv := New(server.URL + "/api/chat")
	reply, err := conv.Send(context.Background(), "リスクは?", "", nil)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply.Content != "第3条に注意してください。" {
		t.Errorf("Unexpected reply: %q", reply.Content)
	}
	if reply.Role != RoleAI {
		t.Errorf("Expected AI role, got %q", reply.Role)
	}

	messages := conv.Messages()
	if len(messages) != 2 {
		t.Fatalf("Expected user+AI messages, got %d", len(messages))
	}
	if messages[0].Role != RoleUser || messages[0].Content != "リスクは?" {
		t.Errorf("Unexpected user message: %+v", messages[0])
	}
	if messages[1].Role != RoleAI {
		t.Errorf("Unexpected second message: %+v", messages[1])
	}

	dbg := conv.LastDebug()
	if dbg == nil {
		t.Fatal("Expected a debug payload")
	}
	if dbg.AssembledPrompt != "p" || dbg.UpstreamStatus != 200 {
		t.Errorf("Unexpected debug payload: %+v", dbg)
	}
	if conv.Loading() {
		t.Error("Loading must be false after the send completes")
	}
}

func TestSendCustomInstructionShownInHistory(t *testing.T) {
	server := okServer(t, "了解")
	defer server.Close()

	conv := New(server.URL + "/api/chat")
	if _, err := conv.Send(context.Background(), "確認して", "英語で", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	user := conv.Messages()[0]
	if !strings.Contains(user.Content, "【追加プロンプト】英語で") {
		t.Errorf("Expected custom instruction marker in user message, got %q", user.Content)
	}
}

func TestSendFailureAppendsFailureMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	conv := New(server.URL + "/api/chat")
	reply, err := conv.Send(context.Background(), "質問", "", nil)
	if err != nil {
		t.Fatalf("Send must not fail hard: %v", err)
	}
	if reply.Content != FailureMessage {
		t.Errorf("Expected failure message, got %q", reply.Content)
	}

	// Exactly one AI message per attempt, failure included.
	messages := conv.Messages()
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[1].Role != RoleAI || messages[1].Content != FailureMessage {
		t.Errorf("Unexpected AI message: %+v", messages[1])
	}
	if conv.LastDebug() != nil {
		t.Error("Failed request must not leave a debug payload")
	}
}

func TestSendContentTypeSelection(t *testing.T) {
	tests := []struct {
		name          string
		attachments   []Attachment
		wantMultipart bool
	}{
		{"no attachments", nil, false},
		{
			"first attachment pdf",
			[]Attachment{{Name: "a.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")}},
			true,
		},
		{
			"first attachment image",
			[]Attachment{
				{Name: "scan.png", MIMEType: "image/png", Data: []byte("png")},
				{Name: "b.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotContentType string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotContentType = r.Header.Get("Content-Type")
				fmt.Fprint(w, `{"result":{"content":"ok"},"debug":{"extractedTexts":[]}}`)
			}))
			defer server.Close()

			conv := New(server.URL + "/api/chat")
			if _, err := conv.Send(context.Background(), "q", "", tt.attachments); err != nil {
				t.Fatalf("Send failed: %v", err)
			}

			isMultipart := strings.HasPrefix(gotContentType, "multipart/form-data")
			if isMultipart != tt.wantMultipart {
				t.Errorf("Content-Type %q, want multipart=%v", gotContentType, tt.wantMultipart)
			}
		})
	}
}

func TestSendMultipartCarriesAllFiles(t *testing.T) {
	var fileNames []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
		}
		for _, h := range r.MultipartForm.File["file"] {
			fileNames = append(fileNames, h.Filename)
		}
		fmt.Fprint(w, `{"result":{"content":"ok"},"debug":{"extractedTexts":[]}}`)
	}))
	defer server.Close()

	conv := New(server.URL + "/api/chat")
	attachments := []Attachment{
		{Name: "contract.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")},
		{Name: "terms.xlsx", MIMEType: "application/vnd.ms-excel", Data: []byte("xls")},
	}
	if _, err := conv.Send(context.Background(), "q", "", attachments); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(fileNames) != 2 || fileNames[0] != "contract.pdf" || fileNames[1] != "terms.xlsx" {
		t.Errorf("Expected both files in order, got %v", fileNames)
	}
}

func TestMessagesChronological(t *testing.T) {
	server := okServer(t, "回答")
	defer server.Close()

	conv := New(server.URL + "/api/chat")
	for i := 0; i < 3; i++ {
		if _, err := conv.Send(context.Background(), fmt.Sprintf("質問%d", i), "", nil); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	messages := conv.Messages()
	if len(messages) != 6 {
		t.Fatalf("Expected 6 messages, got %d", len(messages))
	}
	for i, m := range messages {
		wantRole := RoleUser
		if i%2 == 1 {
			wantRole = RoleAI
		}
		if m.Role != wantRole {
			t.Errorf("messages[%d].Role = %q, want %q", i, m.Role, wantRole)
		}
		if i > 0 && m.Timestamp.Before(messages[i-1].Timestamp) {
			t.Errorf("messages[%d] out of chronological order", i)
		}
	}
}
