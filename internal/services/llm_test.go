package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestLLM(baseURL string) *LLMService {
	s := NewLLMService()
	s.baseURL = baseURL
	s.token = "test-token"
	s.model = "test-model"
	return s
}

func TestLLMGenerate(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  thanks for your comment!  "}}]}`))
	}))
	defer server.Close()

	svc := newTestLLM(server.URL)
	reply, err := svc.Generate(context.Background(), "nice article")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply != "thanks for your comment!" {
		t.Errorf("expected trimmed reply, got %q", reply)
	}

	if gotReq.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != "nice article" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestLLMGenerate_MissingToken(t *testing.T) {
	svc := NewLLMService()
	svc.token = ""

	_, err := svc.Generate(context.Background(), "hello")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLLMGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestLLM(server.URL)
	if _, err := svc.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}

func TestLLMGenerate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	svc := newTestLLM(server.URL)
	if _, err := svc.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestLLMGenerate_BlankContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer server.Close()

	svc := newTestLLM(server.URL)
	if _, err := svc.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on blank content")
	}
}
