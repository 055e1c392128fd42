package search

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyQuery is returned when the query is blank after trimming.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidBaseURL is returned for API URLs that are not absolute http(s) URLs.
	ErrInvalidBaseURL = errors.New("invalid API base URL")

	// ErrUnavailable wraps transport failures (connection refused, timeouts, cancellation).
	ErrUnavailable = errors.New("search service unavailable")

	// ErrMalformedResponse indicates a 2xx response whose body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrRateLimited is matched by APIErrors with status 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrBusy is returned when a search is submitted while another is running.
	ErrBusy = errors.New("search already in progress")
)

// User-facing messages
const (
	MsgRateLimited    = "Too many requests. Please try again later."
	MsgSearchFailed   = "Failed to fetch search results. Please try again."
	MsgTrendingFailed = "Failed to fetch trending searches."
)

// APIError is a non-2xx response from the search service.
type APIError struct {
	Status int
	Detail string // "detail" field of the error body, if any
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("search service returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("search service returned %d %s", e.Status, http.StatusText(e.Status))
}

// Unwrap lets errors.Is(err, ErrRateLimited) match 429 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// UserMessage maps err to the message shown on screen. fallback is used
// when nothing more specific is known.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrRateLimited) {
		return MsgRateLimited
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
