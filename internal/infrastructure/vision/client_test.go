package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
	"github.com/mkravets/medrecords-ai/internal/infrastructure/resilience"
)

func fastExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	})
}

func TestExtractDocumentSendsImageAndHint(t *testing.T) {
	var captured struct {
		Model  string   `json:"model"`
		Prompt string   `json:"prompt"`
		Images []string `json:"images"`
		Stream bool     `json:"stream"`
		Format string   `json:"format"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": " {\"documentType\":\"lab_report\"} "})
	}))
	defer server.Close()

	client := New(server.URL, "llama3.2-vision:11b", Options{RequestsPerMinute: 6000})
	raw, err := client.ExtractDocument(context.Background(), []byte("img"), "LDL 145 mg/dL")
	if err != nil {
		t.Fatalf("ExtractDocument() error = %v", err)
	}
	if raw != `{"documentType":"lab_report"}` {
		t.Fatalf("raw response = %q", raw)
	}
	if captured.Model != "llama3.2-vision:11b" {
		t.Fatalf("request = %+v", captured)
	}
	if captured.Format != "json" || captured.Stream {
		t.Fatalf("request options = %+v", captured)
	}
	if len(captured.Images) != 1 {
		t.Fatalf("images = %v", captured.Images)
	}
	if !strings.Contains(captured.Prompt, "LDL 145 mg/dL") {
		t.Fatal("text hint missing from prompt")
	}
}

func TestExtractDocumentRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "{}"})
	}))
	defer server.Close()

	client := New(server.URL, "m", Options{RequestsPerMinute: 6000, ResilienceExecutor: fastExecutor()})
	raw, err := client.ExtractDocument(context.Background(), []byte("img"), "")
	if err != nil {
		t.Fatalf("ExtractDocument() error = %v", err)
	}
	if raw != "{}" || calls != 2 {
		t.Fatalf("raw = %q, calls = %d", raw, calls)
	}
}

func TestExtractDocumentWrapsExhaustedRetriesAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "m", Options{RequestsPerMinute: 6000, ResilienceExecutor: fastExecutor()})
	_, err := client.ExtractDocument(context.Background(), []byte("img"), "")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("error = %v, want ErrTemporary", err)
	}
}

func TestExtractDocumentNonRetryableStatusNotTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad model name", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "m", Options{RequestsPerMinute: 6000, ResilienceExecutor: fastExecutor()})
	_, err := client.ExtractDocument(context.Background(), []byte("img"), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("client errors must not read as temporary: %v", err)
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("error = %v", err)
	}
}

func TestClassifyVisionError(t *testing.T) {
	if class := classifyVisionError(context.Canceled); class.Retryable || class.RecordFailure {
		t.Fatalf("cancellation classification = %+v", class)
	}
	if class := classifyVisionError(&HTTPStatusError{StatusCode: http.StatusBadGateway}); !class.Retryable {
		t.Fatal("502 must be retryable")
	}
	if class := classifyVisionError(&HTTPStatusError{StatusCode: http.StatusBadRequest}); class.Retryable {
		t.Fatal("400 must not be retryable")
	}
	if class := classifyVisionError(errors.New("opaque")); class.Retryable || !class.RecordFailure {
		t.Fatalf("opaque classification = %+v", class)
	}
}
