// Package service sequences the query pipeline: extraction, prompt
// construction, completion, interpretation, routing and narration.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/txlens/txlens/pkg/cache"
	"github.com/txlens/txlens/pkg/cost"
	"github.com/txlens/txlens/pkg/extract"
	"github.com/txlens/txlens/pkg/graph"
	"github.com/txlens/txlens/pkg/interpret"
	"github.com/txlens/txlens/pkg/llm"
	"github.com/txlens/txlens/pkg/prompts"
	"github.com/txlens/txlens/pkg/types"
)

// fallbackNarration is returned when the narration step fails; narration
// is best-effort and never fails the request.
const fallbackNarration = "Results retrieved successfully. See the data below for details."

const cacheTTL = time.Hour

// Options configures optional service behavior.
type Options struct {
	// Model is the completion model name, used for cost telemetry.
	Model string
	// Cache, when set, short-circuits repeated parse prompts.
	Cache cache.Cache
}

// Service is the orchestrator for natural-language and direct structured
// queries. It is stateless across requests and safe for concurrent use.
type Service struct {
	completions llm.Client
	router      *graph.Router
	store       *graph.Store
	calculator  *cost.Calculator
	model       string
	cache       cache.Cache
	logger      *slog.Logger
}

// New creates a service over the completion client and graph store.
func New(completions llm.Client, store *graph.Store, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		completions: completions,
		router:      graph.NewRouter(store),
		store:       store,
		calculator:  cost.NewCalculator(),
		model:       opts.Model,
		cache:       opts.Cache,
		logger:      logger,
	}
}

// ParseQuery translates free text into a ParsedQuery via the completion
// service. Extraction and classification never fail; completion and
// interpretation failures are terminal for the request.
func (s *Service) ParseQuery(ctx context.Context, prompt string) (*types.ParsedQuery, error) {
	started := time.Now()

	params := extract.Parameters(prompt)
	intent := extract.ClassifyIntent(prompt)
	s.logger.Info("query analysis", "intent", intent, "addresses", len(params.Addresses))

	contextual := prompts.Contextual(extract.Sanitize(prompt), params, intent)
	system := prompts.QueryParser
	if intent == types.IntentUnknown {
		system = ""
	}

	resp, err := s.complete(ctx, system, contextual, llm.PolicyPrecise)
	if err != nil {
		s.logger.Error("failed to parse natural language query", "error", err, "duration", time.Since(started))
		return nil, err
	}

	usage := s.calculator.Estimate(s.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	parsed, err := interpret.Interpret(resp.Content, params, intent)
	if err != nil {
		s.logger.Error("completion response not interpretable", "error", err)
		return nil, err
	}

	if intent != types.IntentUnknown {
		if issues := interpret.Validate(parsed.Query); len(issues) > 0 {
			s.logger.Warn("generated query has validation issues", "issues", issues, "query", parsed.Query)
		}
		s.logger.Info("successfully parsed query",
			"intent", parsed.Intent,
			"tokens", usage.TotalTokens,
			"estimated_cost", usage.EstimatedCost,
			"duration", time.Since(started))
	}

	return parsed, nil
}

// Execute routes a structured query to one catalog operation.
func (s *Service) Execute(ctx context.Context, query string, vars map[string]any) (map[string]any, error) {
	s.logger.Info("executing catalog query", "query", query)
	return s.router.Execute(ctx, query, vars)
}

// Narrate explains results in plain language. Failures degrade to a
// static message; results of any shape are accepted.
func (s *Service) Narrate(ctx context.Context, question string, results any) string {
	var resultsJSON string
	if results != nil {
		if encoded, err := json.MarshalIndent(results, "", "  "); err == nil {
			resultsJSON = string(encoded)
		}
	}

	resp, err := s.complete(ctx, prompts.ResultExplainer, prompts.Narration(question, resultsJSON), llm.PolicyStandard)
	if err != nil {
		s.logger.Error("failed to narrate results", "error", err)
		return fallbackNarration
	}
	return resp.Content
}

// Ask answers a natural-language question end to end: parse, execute,
// narrate. An unknown intent returns only the parser's explanation.
func (s *Service) Ask(ctx context.Context, prompt string) (*types.QueryResponse, error) {
	parsed, err := s.ParseQuery(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if parsed.Query == "" {
		return &types.QueryResponse{
			Explanation: parsed.Explanation,
			Intent:      parsed.Intent,
			Confidence:  parsed.Confidence,
		}, nil
	}

	results, err := s.router.Execute(ctx, parsed.Query, parsed.Parameters)
	if err != nil {
		return nil, err
	}

	return &types.QueryResponse{
		Query:       parsed.Query,
		Explanation: parsed.Explanation,
		Results:     results,
		Narration:   s.Narrate(ctx, prompt, results),
		Intent:      parsed.Intent,
		Confidence:  parsed.Confidence,
	}, nil
}

// HealthCheck probes the graph store.
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.store.HealthCheck(ctx)
}

// complete wraps the completion client with the optional response cache.
// Only precise (deterministic-ish) calls are cached.
func (s *Service) complete(ctx context.Context, system, prompt string, policy llm.Policy) (*llm.Response, error) {
	if s.cache == nil || policy != llm.PolicyPrecise {
		return s.completions.Complete(ctx, system, prompt, policy)
	}

	key := cache.CompletionKey(string(policy), system, prompt)
	if raw, err := s.cache.Get(key); err == nil {
		var cached llm.Response
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.logger.Debug("completion cache hit")
			return &cached, nil
		}
	}

	resp, err := s.completions.Complete(ctx, system, prompt, policy)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(key, encoded, cacheTTL); err != nil {
			s.logger.Warn("failed to cache completion", "error", err)
		}
	}
	return resp, nil
}
