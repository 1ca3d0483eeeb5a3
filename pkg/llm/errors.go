package llm

import (
	"context"
	"errors"
	"net"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// Sentinel errors for the completion service. Each carries the user-facing
// message surfaced by the API layer; callers match with errors.Is.
var (
	ErrRateLimited     = errors.New("completion service rate limit exceeded, please try again later")
	ErrAuthInvalid     = errors.New("invalid API key for the completion service")
	ErrTimeout         = errors.New("completion request timed out, please try again")
	ErrNetwork         = errors.New("network error while communicating with the completion service")
	ErrInvalidResponse = errors.New("received invalid response from the completion service")
)

// classify maps a transport or API error onto one of the sentinel errors.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429:
			return ErrRateLimited
		case 401:
			return ErrAuthInvalid
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrNetwork
	}

	return ErrNetwork
}

// transient reports whether a failed call may succeed on retry. Only
// transport-level failures qualify; API rejections (429, 401) never do.
func transient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
