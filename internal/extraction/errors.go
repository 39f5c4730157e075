package extraction

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Failure classes surfaced by Extract. The planner branches on these with
// errors.Is rather than matching message text.
var (
	// ErrEmptyResponse: the service returned nothing parseable after fence
	// stripping. Fatal for the chunk call.
	ErrEmptyResponse = errors.New("extraction: empty response")
	// ErrMalformedResponse: the response text did not contain valid JSON of
	// the expected shape. Fatal for the chunk call.
	ErrMalformedResponse = errors.New("extraction: malformed response")
	// ErrPayloadTooLarge: the service rejected the request for size. Expected
	// and retryable; the planner answers it by shrinking the page window.
	ErrPayloadTooLarge = errors.New("extraction: payload too large")
)

// oversizedMarkers are substrings the service is known to use when rejecting
// an oversized request with a generic 4xx instead of 413.
var oversizedMarkers = []string{
	"payload too large",
	"request too large",
	"request_too_large",
	"exceeds the maximum",
	"maximum content size",
	"too many total text bytes",
}

// classifyServiceError maps a non-2xx response onto the failure taxonomy.
func classifyServiceError(status int, body string) error {
	if status == http.StatusRequestEntityTooLarge {
		return fmt.Errorf("status %d: %w", status, ErrPayloadTooLarge)
	}
	lower := strings.ToLower(body)
	for _, marker := range oversizedMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("status %d: %w", status, ErrPayloadTooLarge)
		}
	}
	return fmt.Errorf("extraction service status %d: %s", status, strings.TrimSpace(body))
}
