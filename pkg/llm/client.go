// Package llm wraps the external text-completion service behind a minimal
// Complete(prompt, policy) capability. Timeout, bounded retry, circuit
// breaking and token accounting live here so callers stay free of
// transport concerns.
package llm

import (
	"context"
)

// Policy selects the sampling behavior for one completion call.
type Policy string

const (
	// PolicyPrecise is for structured-output tasks (query generation).
	PolicyPrecise Policy = "precise"
	// PolicyStandard is for narration.
	PolicyStandard Policy = "standard"
	// PolicyCreative is for open-ended generation.
	PolicyCreative Policy = "creative"
)

// Temperature returns the sampling temperature for the policy.
func (p Policy) Temperature() float32 {
	switch p {
	case PolicyPrecise:
		return 0.1
	case PolicyCreative:
		return 0.7
	default:
		return 0.3
	}
}

// Client is the capability interface for the completion service.
type Client interface {
	// Complete sends one prompt and returns the textual payload.
	Complete(ctx context.Context, system, prompt string, policy Policy) (*Response, error)

	// Close cleans up any resources.
	Close() error
}

// Response is one completion result.
type Response struct {
	Content string     `json:"content"`
	Usage   TokenUsage `json:"usage"`
}

// TokenUsage reports the service's token counts for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
