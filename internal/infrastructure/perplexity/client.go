package perplexity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pricewatch/backend/internal/domain"
)

// DefaultModel is the search-grounded model used for price lookups
const DefaultModel = "sonar"

// maxLoggedBody bounds how much of an error body is logged
const maxLoggedBody = 512

// Client handles communication with the Perplexity chat completions API
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
	debug  bool
}

// NewClient creates a new completion API client
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "PriceWatch/1.0")

	return &Client{
		http:   httpClient,
		apiKey: apiKey,
		model:  model,
	}
}

// SetDebug enables or disables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
	c.http.SetDebug(debug)
}

// SubmitQuery sends prompt as a single user message and returns the answer text
func (c *Client) SubmitQuery(ctx context.Context, prompt string) (string, error) {
	if c.debug {
		log.Printf("[PERPLEXITY] SubmitQuery model=%s prompt=%d chars", c.model, len(prompt))
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: roleUser, Content: prompt},
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		log.Printf("[PERPLEXITY] Request error: %v", err)
		return "", fmt.Errorf("%w: %v", domain.ErrCompletionFailure, err)
	}

	if err := checkStatus(resp); err != nil {
		log.Printf("[PERPLEXITY] API error - Status: %d, Body: %s", resp.StatusCode(), truncate(resp.String(), maxLoggedBody))
		return "", err
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		log.Printf("[PERPLEXITY] JSON decode error: %v", err)
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrCompletionFailure, err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", domain.ErrCompletionFailure)
	}

	answer := result.Choices[0].Message.Content
	if c.debug {
		log.Printf("[PERPLEXITY] Answer received: %d chars, %d tokens", len(answer), result.Usage.TotalTokens)
	}
	return answer, nil
}

// checkStatus maps non-2xx responses to domain errors
func checkStatus(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return nil
	}

	message := errorMessage(resp.Body())

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", domain.ErrUnauthorized, status, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: %s", domain.ErrCompletionFailure, domain.ErrRateLimited, message)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrCompletionFailure, status, message)
	}
}

// errorMessage extracts the API error message, falling back to the raw body
func errorMessage(body []byte) string {
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return truncate(string(body), maxLoggedBody)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
