package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// Neo4jDriver implements GraphDriver for Neo4j databases. The underlying
// driver owns a bounded connection pool and is safe for concurrent use;
// sessions are scoped to a single query.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jDriver creates a Neo4j driver with a pool of 50 connections and
// 30s acquisition and transaction-retry budgets.
func NewNeo4jDriver(uri, username, password, database string, logger *slog.Logger) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""),
		func(conf *config.Config) {
			conf.MaxConnectionPoolSize = 50
			conf.ConnectionAcquisitionTimeout = 30 * time.Second
			conf.MaxTransactionRetryTime = 30 * time.Second
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Neo4jDriver{
		client:   client,
		database: database,
		logger:   logger,
	}, nil
}

// ExecuteQuery runs one read traversal in its own session and returns the
// normalized rows. The session is closed on every exit path. Driver
// failures are logged and collapsed into ErrQueryFailed.
func (n *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	n.logger.Debug("executing graph query", "query", query, "params", params)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		n.logger.Error("graph query failed", "error", err, "query", query)
		return nil, ErrQueryFailed
	}

	records := result.([]*db.Record)
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			row[key] = Normalize(value)
		}
		rows = append(rows, row)
	}

	n.logger.Debug("graph query executed", "rows", len(rows))
	return rows, nil
}

// VerifyConnectivity probes the store.
func (n *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	return n.client.VerifyConnectivity(ctx)
}

// Provider returns the provider type.
func (n *Neo4jDriver) Provider() GraphProvider {
	return GraphProviderNeo4j
}

// Close releases the connection pool.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}
