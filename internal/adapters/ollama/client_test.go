package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

func TestClient_AnalyzeText(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		want         string
		wantErr      error
	}{
		{
			name:         "Success",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"  Hola means hello.\n"}}`,
			want:         "Hola means hello.",
		},
		{
			name:         "Server error",
			status:       http.StatusInternalServerError,
			responseBody: `{"error":"bad"}`,
			wantErr:      domain.ErrProviderUnavailable,
		},
		{
			name:         "Error in body",
			status:       http.StatusOK,
			responseBody: `{"error":"model not loaded"}`,
			wantErr:      domain.ErrProviderUnavailable,
		},
		{
			name:         "Empty reply",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"   "}}`,
			wantErr:      domain.ErrProviderUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/chat" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if r.Method != http.MethodPost {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "test-model", srv.Client(), nil)
			got, err := client.AnalyzeText(context.Background(), domain.AnalysisRequest{
				Text:     "Hola",
				Language: "English",
				Level:    "A1",
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Analysis != tt.want {
				t.Fatalf("analysis: got %q, want %q", got.Analysis, tt.want)
			}
			if gotRequest.Model != "test-model" {
				t.Fatalf("expected model test-model, got %q", gotRequest.Model)
			}
			if gotRequest.Stream {
				t.Fatalf("expected non-streaming request")
			}
			if len(gotRequest.Messages) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(gotRequest.Messages))
			}
			if gotRequest.Messages[0].Role != "system" || gotRequest.Messages[0].Content != systemPrompt {
				t.Fatalf("system prompt mismatch")
			}
			user := gotRequest.Messages[1].Content
			for _, part := range []string{"Hola", "native language: English", "proficiency level: A1"} {
				if !strings.Contains(user, part) {
					t.Fatalf("user prompt missing %q: %s", part, user)
				}
			}
		})
	}
}

func TestClient_StatusIsCarried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", srv.Client(), nil).AnalyzeText(context.Background(), domain.AnalysisRequest{Text: "x"})
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if pe.Provider != "ollama" || pe.Status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected provider error: %+v", pe)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "", nil, nil)
	if c.baseURL != DefaultBaseURL {
		t.Fatalf("base url: got %q", c.baseURL)
	}
	if c.model != DefaultModel {
		t.Fatalf("model: got %q", c.model)
	}
}

func TestClient_RequestCarriesNoFormat(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", srv.Client(), nil).AnalyzeText(context.Background(), domain.AnalysisRequest{Text: "x", Language: "en", Level: "B1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["format"]; ok {
		t.Fatalf("request should be free text, got format %v", raw["format"])
	}
	if raw["stream"] != false {
		t.Fatalf("expected stream false, got %v", raw["stream"])
	}
}

func TestClient_Chat(t *testing.T) {
	var gotRequest chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":" Use \"hola\". "}}`))
	}))
	defer srv.Close()

	history := []domain.ChatMessage{
		{Role: "user", Content: "I am learning Spanish."},
		{Role: "assistant", Content: "Great, let's start."},
	}
	got, err := NewClient(srv.URL, "", srv.Client(), nil).Chat(context.Background(), "How do I greet someone?", history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Reply != `Use "hola".` {
		t.Fatalf("reply: got %q", got.Reply)
	}
	if len(gotRequest.Messages) != 4 {
		t.Fatalf("expected system, history and user turns, got %d messages", len(gotRequest.Messages))
	}
	if gotRequest.Messages[0].Role != "system" || gotRequest.Messages[0].Content != chatSystemPrompt {
		t.Fatalf("system prompt mismatch: %+v", gotRequest.Messages[0])
	}
	if last := gotRequest.Messages[3]; last.Role != "user" || last.Content != "How do I greet someone?" {
		t.Fatalf("last message: got %+v", last)
	}

	if len(got.History) != 4 {
		t.Fatalf("history: got %d turns, want 4", len(got.History))
	}
	if got.History[3].Role != "assistant" || got.History[3].Content != got.Reply {
		t.Fatalf("history tail: got %+v", got.History[3])
	}
	if len(history) != 2 {
		t.Fatalf("caller history was modified")
	}
}

func TestClient_ChatProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", srv.Client(), nil).Chat(context.Background(), "hi", nil)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
}
