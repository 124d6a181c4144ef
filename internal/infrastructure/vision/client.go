// Package vision talks to the hosted document-understanding model. It returns
// the model's raw response text; interpreting that text is the normalizer's
// job, so a syntactically broken model reply is not an error here.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkravets/medrecords-ai/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	RequestTimeout     time.Duration
	RequestsPerMinute  int
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, model string, options Options) *Client {
	timeout := options.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	rpm := options.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		executor:   options.ResilienceExecutor,
	}
}

// ExtractDocument sends one document image to the model and returns the raw
// response text. textHint, when present, is embedded text recovered from the
// upload and is appended to the prompt to help the model read poor scans.
func (c *Client) ExtractDocument(ctx context.Context, image []byte, textHint string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("vision rate limit: %w", err)
	}

	reqBody := map[string]any{
		"model":  c.model,
		"prompt": buildExtractionPrompt(textHint),
		"images": []string{base64.StdEncoding.EncodeToString(image)},
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "extract")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "vision.extract", call, classifyVisionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("vision extract", err)
	}
	return strings.TrimSpace(response.Response), nil
}
