// Package llm holds helpers shared by the LLM provider adapters.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// maxBodyInError bounds how much of a provider's error body is echoed.
const maxBodyInError = 300

// TransportError classifies a failed HTTP round trip.
// Context cancellation is passed through untouched.
func TransportError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", provider, err)
	}
	return fmt.Errorf("%s: %w: %w", provider, domain.ErrNetwork, err)
}

// StatusError classifies a non-2xx provider response.
func StatusError(provider string, status int, body []byte) error {
	var kind error
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden, status == http.StatusNotFound:
		kind = domain.ErrLLMUnavailable
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		kind = domain.ErrValidation
	default:
		kind = domain.ErrNetwork
	}
	return fmt.Errorf("%s: %w: status %d: %s", provider, kind, status, Snippet(body))
}

// DecodeError classifies a reply that could not be decoded.
func DecodeError(provider string, err error) error {
	return fmt.Errorf("%s: %w: decode response: %w", provider, domain.ErrValidation, err)
}

// Snippet trims a response body for inclusion in an error message.
func Snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyInError {
		return s[:maxBodyInError] + "..."
	}
	return s
}
