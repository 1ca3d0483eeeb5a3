package graph

import (
	"context"
	"errors"
	"strings"
)

// Routing failures are client errors (400 class), distinct from graph
// execution failures.
var (
	ErrMissingVariables = errors.New("Missing required variables")
	ErrUnknownQuery     = errors.New("Unknown query type")
)

// Router maps an operation-name string onto exactly one catalog
// operation. Matching is case-insensitive substring containment, walked
// in a fixed priority order so overlapping names stay unambiguous; the
// tolerance is deliberate, since the name usually arrives embedded in
// model-generated query text.
type Router struct {
	store  *Store
	routes []route
}

type route struct {
	name    string
	handler func(ctx context.Context, vars map[string]any) (any, error)
}

// NewRouter creates a router over the store.
func NewRouter(store *Store) *Router {
	r := &Router{store: store}
	r.routes = []route{
		{"checkDirectConnection", r.checkDirectConnection},
		{"checkRelationship", r.checkRelationship},
		{"shortestPath", r.shortestPath},
		{"transactionsTo", r.transactionsTo},
		{"transactionsBetween", r.transactionsBetween},
		{"topSenders", r.topSenders},
		{"addressesAtDistance", r.addressesAtDistance},
		{"transactionGraph", r.transactionGraph},
		{"transactionCount", r.transactionCount},
		{"addressInfo", r.addressInfo},
	}
	return r
}

// Execute dispatches the query to the first matching catalog operation
// and returns its result keyed by the operation name. A nil variable bag
// is a hard failure before any graph session is opened.
func (r *Router) Execute(ctx context.Context, query string, vars map[string]any) (map[string]any, error) {
	if vars == nil {
		return nil, ErrMissingVariables
	}

	lower := strings.ToLower(query)
	for _, rt := range r.routes {
		if !strings.Contains(lower, strings.ToLower(rt.name)) {
			continue
		}
		result, err := rt.handler(ctx, vars)
		if err != nil {
			return nil, err
		}
		return map[string]any{rt.name: result}, nil
	}

	return nil, ErrUnknownQuery
}

func (r *Router) checkDirectConnection(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.CheckDirectConnection(ctx, stringVar(vars, "fromAddress"), stringVar(vars, "toAddress"))
}

func (r *Router) checkRelationship(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.CheckRelationship(ctx,
		stringVar(vars, "address1"),
		stringVar(vars, "address2"),
		intVar(vars, "maxHops", 3))
}

func (r *Router) shortestPath(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.ShortestPath(ctx, stringVar(vars, "fromAddress"), stringVar(vars, "toAddress"))
}

func (r *Router) transactionsTo(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.TransactionsTo(ctx,
		stringVar(vars, "address"),
		int64Var(vars, "startTime"),
		int64Var(vars, "endTime"),
		floatVar(vars, "minValue"))
}

func (r *Router) transactionsBetween(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.TransactionsBetween(ctx,
		stringVar(vars, "address1"),
		stringVar(vars, "address2"),
		int64Var(vars, "startTime"),
		int64Var(vars, "endTime"))
}

func (r *Router) topSenders(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.TopSenders(ctx, stringVar(vars, "toAddress"), intVar(vars, "limit", 10))
}

func (r *Router) addressesAtDistance(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.AddressesAtDistance(ctx, stringVar(vars, "fromAddress"), intVar(vars, "hops", 1))
}

func (r *Router) transactionGraph(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.TransactionGraph(ctx, stringVar(vars, "address"), intVar(vars, "depth", 2))
}

func (r *Router) transactionCount(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.TransactionCount(ctx,
		stringVar(vars, "address"),
		int64Var(vars, "startTime"),
		int64Var(vars, "endTime"))
}

func (r *Router) addressInfo(ctx context.Context, vars map[string]any) (any, error) {
	return r.store.AddressInfo(ctx, stringVar(vars, "address"))
}

// Variable bags arrive from JSON, so numbers are float64; the helpers
// accept both numeric shapes.

func stringVar(vars map[string]any, key string) string {
	s, _ := vars[key].(string)
	return s
}

func intVar(vars map[string]any, key string, fallback int) int {
	switch v := vars[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

func int64Var(vars map[string]any, key string) int64 {
	switch v := vars[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func floatVar(vars map[string]any, key string) float64 {
	switch v := vars[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
