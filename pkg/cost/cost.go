// Package cost estimates completion-service spend from reported token
// counts. The estimate is telemetry only and never affects control flow.
package cost

import (
	"strings"
	"sync"
)

// PricingModel is the cost per 1M tokens.
type PricingModel struct {
	InputPrice  float64
	OutputPrice float64
}

// Usage is the telemetry record for one completion call.
type Usage struct {
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// Calculator maps model names to pricing and computes estimates.
type Calculator struct {
	mu     sync.RWMutex
	prices map[string]PricingModel
}

// NewCalculator creates a calculator with default pricing.
func NewCalculator() *Calculator {
	c := &Calculator{prices: make(map[string]PricingModel)}
	c.loadDefaults()
	return c
}

// Estimate returns the usage record for one call of the given model.
func (c *Calculator) Estimate(model string, inputTokens, outputTokens int) Usage {
	c.mu.RLock()
	price, ok := c.prices[strings.ToLower(model)]
	if !ok {
		price = c.fallback(strings.ToLower(model))
	}
	c.mu.RUnlock()

	inputCost := float64(inputTokens) / 1_000_000.0 * price.InputPrice
	outputCost := float64(outputTokens) / 1_000_000.0 * price.OutputPrice

	return Usage{
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
		TotalTokens:   inputTokens + outputTokens,
		EstimatedCost: inputCost + outputCost,
	}
}

// SetPrice overrides pricing for a model.
func (c *Calculator) SetPrice(model string, price PricingModel) {
	c.mu.Lock()
	c.prices[strings.ToLower(model)] = price
	c.mu.Unlock()
}

func (c *Calculator) fallback(model string) PricingModel {
	switch {
	case strings.HasPrefix(model, "gpt-4"):
		return c.prices["gpt-4o"]
	case strings.HasPrefix(model, "gpt-3.5"):
		return c.prices["gpt-3.5-turbo"]
	case strings.HasPrefix(model, "claude"):
		return c.prices["claude-sonnet"]
	}
	return PricingModel{}
}

func (c *Calculator) loadDefaults() {
	c.prices["gpt-4o"] = PricingModel{InputPrice: 2.50, OutputPrice: 10.00}
	c.prices["gpt-4o-mini"] = PricingModel{InputPrice: 0.15, OutputPrice: 0.60}
	c.prices["gpt-4-turbo"] = PricingModel{InputPrice: 10.00, OutputPrice: 30.00}
	c.prices["gpt-3.5-turbo"] = PricingModel{InputPrice: 0.50, OutputPrice: 1.50}

	c.prices["claude-sonnet"] = PricingModel{InputPrice: 3.00, OutputPrice: 15.00}
	c.prices["claude-opus"] = PricingModel{InputPrice: 15.00, OutputPrice: 75.00}
	c.prices["claude-haiku"] = PricingModel{InputPrice: 0.25, OutputPrice: 1.25}
}
