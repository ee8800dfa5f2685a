package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/liuq93/gochat/internal/domain"
)

func TestOpenAIComplete(t *testing.T) {
	var gotReq chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "sk-test", time.Second)
	reply, err := client.Complete(context.Background(), []PromptMessage{
		{Role: domain.RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "hi there" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if gotReq.Model != "gpt-3.5-turbo" || gotReq.Temperature != 0.7 || gotReq.MaxTokens != 1000 {
		t.Fatalf("unexpected request parameters: %+v", gotReq)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestOpenAICompleteStatusTranslation(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusInternalServerError, KindUnavailable},
		{http.StatusServiceUnavailable, KindUnavailable},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindProvider},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("status %d", tc.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				fmt.Fprint(w, `{"error":{"message":"nope"}}`)
			}))
			defer server.Close()

			client := NewOpenAIClient(server.URL, "sk-test", time.Second)
			_, err := client.Complete(context.Background(), []PromptMessage{{Role: domain.RoleUser, Content: "hi"}})
			if !IsKind(err, tc.kind) {
				t.Fatalf("expected kind %q, got %v", tc.kind, err)
			}
		})
	}
}

func TestOpenAICompleteMalformedResponse(t *testing.T) {
	for _, body := range []string{`{}`, `{"choices":[]}`, `{"choices":[{}]}`, `not json`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, body)
		}))

		client := NewOpenAIClient(server.URL, "sk-test", time.Second)
		_, err := client.Complete(context.Background(), []PromptMessage{{Role: domain.RoleUser, Content: "hi"}})
		server.Close()
		if !IsKind(err, KindMalformedResponse) {
			t.Fatalf("body %q: expected malformed response error, got %v", body, err)
		}
	}
}

func TestOpenAICompleteMissingKey(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "", time.Second)
	_, err := client.Complete(context.Background(), []PromptMessage{{Role: domain.RoleUser, Content: "hi"}})
	if !IsKind(err, KindAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no network call, got %d", calls)
	}
}
