// Package driver provides access to the transaction property graph. One
// session is acquired per query and released on every exit path; every
// returned row is normalized into plain portable values.
package driver

import (
	"context"
	"errors"
)

// ErrQueryFailed is the generic execution failure surfaced to callers.
// Raw driver diagnostics are logged, never returned.
var ErrQueryFailed = errors.New("database query failed")

// GraphProvider identifies the backing graph store.
type GraphProvider string

// GraphProviderNeo4j is the only supported provider.
const GraphProviderNeo4j GraphProvider = "neo4j"

// GraphDriver runs parameterized traversals against the graph store.
type GraphDriver interface {
	// ExecuteQuery runs one traversal and returns normalized rows.
	ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	// VerifyConnectivity probes the store.
	VerifyConnectivity(ctx context.Context) error

	// Provider returns the provider type.
	Provider() GraphProvider

	// Close releases the connection pool.
	Close(ctx context.Context) error
}
