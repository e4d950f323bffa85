// Package openai provides the embedding and chat-completion clients for an
// OpenAI-compatible gateway that authenticates via an x-api-key header.
package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// The gateway ignores the SDK's bearer token; any non-empty value works.
const dummyAPIKey = "unused"

// newGatewayClient builds a go-openai client that talks to the gateway,
// injecting the credential header on every request.
func newGatewayClient(baseURL, gatewayKey string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(dummyAPIKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			base: http.DefaultTransport,
			key:  gatewayKey,
		},
	}
	return openai.NewClientWithConfig(cfg)
}

// headerTransport adds the gateway credential to every outgoing request.
type headerTransport struct {
	base http.RoundTripper
	key  string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("x-api-key", t.key)
	return t.base.RoundTrip(clone) //nolint:wrapcheck // transparent transport wrapper
}

// parseAPIError extracts a human-readable error from the API response and
// wraps it with sentinel for status mapping at the transport boundary.
func parseAPIError(err error, sentinel error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("API error %d: %s: %w", reqErr.HTTPStatusCode, detail, sentinel)
		}
		return fmt.Errorf("API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), sentinel)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, sentinel)
	}

	return fmt.Errorf("request failed: %v: %w", err, sentinel)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
