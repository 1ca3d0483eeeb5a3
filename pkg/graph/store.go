// Package graph holds the fixed catalog of transaction-graph traversals
// and the router that dispatches operation names onto them.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/txlens/txlens/pkg/driver"
)

// Store executes the catalog operations against the transaction graph.
// The schema: (:Address {address})-[:SENT]->(:Transaction {hash,
// block_number, timestamp, value_eth})-[:RECEIVED_BY]->(:Address).
type Store struct {
	driver driver.GraphDriver
	logger *slog.Logger
}

// NewStore creates a store over the given graph driver.
func NewStore(d driver.GraphDriver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{driver: d, logger: logger}
}

// CheckDirectConnection reports whether any one-hop sent-to edge exists
// between the two addresses.
func (s *Store) CheckDirectConnection(ctx context.Context, fromAddress, toAddress string) (bool, error) {
	query := `
		MATCH (a1:Address {address: $fromAddress})-[:SENT]->(t:Transaction)-[:RECEIVED_BY]->(a2:Address {address: $toAddress})
		RETURN count(t) > 0 as connected
	`
	rows, err := s.driver.ExecuteQuery(ctx, query, map[string]any{
		"fromAddress": strings.ToLower(fromAddress),
		"toAddress":   strings.ToLower(toAddress),
	})
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	connected, _ := rows[0]["connected"].(bool)
	return connected, nil
}

// CheckRelationship runs a bounded shortest-path search and reports
// whether the addresses are related within maxHops, and at what distance.
func (s *Store) CheckRelationship(ctx context.Context, address1, address2 string, maxHops int) (map[string]any, error) {
	if maxHops <= 0 {
		maxHops = 3
	}
	// Variable-length bounds cannot be parameterized in Cypher.
	query := fmt.Sprintf(`
		MATCH path = shortestPath(
			(a1:Address {address: $address1})-[*..%d]-(a2:Address {address: $address2})
		)
		RETURN length(path) as distance
	`, maxHops)

	rows, err := s.driver.ExecuteQuery(ctx, query, map[string]any{
		"address1": strings.ToLower(address1),
		"address2": strings.ToLower(address2),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]any{"related": false}, nil
	}
	return map[string]any{
		"related":  true,
		"distance": rows[0]["distance"],
	}, nil
}

// ShortestPath finds the unbounded shortest path between two addresses,
// or nil when none exists.
func (s *Store) ShortestPath(ctx context.Context, fromAddress, toAddress string) (any, error) {
	query := `
		MATCH path = shortestPath(
			(a1:Address {address: $fromAddress})-[*]-(a2:Address {address: $toAddress})
		)
		RETURN path
	`
	rows, err := s.driver.ExecuteQuery(ctx, query, map[string]any{
		"fromAddress": strings.ToLower(fromAddress),
		"toAddress":   strings.ToLower(toAddress),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0]["path"], nil
}

// TransactionsTo lists up to 100 transactions received by the address,
// newest first, optionally bounded by time and minimum value.
func (s *Store) TransactionsTo(ctx context.Context, address string, startTime, endTime int64, minValue float64) ([]map[string]any, error) {
	query := `
		MATCH (a:Address)-[:SENT]->(t:Transaction)-[:RECEIVED_BY]->(target:Address {address: $address})
	`
	params := map[string]any{"address": strings.ToLower(address)}

	var conditions []string
	if startTime != 0 {
		conditions = append(conditions, "t.timestamp >= $startTime")
		params["startTime"] = startTime
	}
	if endTime != 0 {
		conditions = append(conditions, "t.timestamp <= $endTime")
		params["endTime"] = endTime
	}
	if minValue != 0 {
		conditions = append(conditions, "t.value_eth >= $minValue")
		params["minValue"] = minValue
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += `
		RETURN t.hash as hash, t.block_number as blockNumber, t.timestamp as timestamp,
		       t.value_eth as value, a.address as fromAddress
		ORDER BY t.timestamp DESC
		LIMIT 100
	`
	return s.driver.ExecuteQuery(ctx, query, params)
}

// TransactionsBetween lists all transactions sent from address1 to
// address2, newest first, optionally bounded by time.
func (s *Store) TransactionsBetween(ctx context.Context, address1, address2 string, startTime, endTime int64) ([]map[string]any, error) {
	query := `
		MATCH (a1:Address {address: $address1})-[:SENT]->(t:Transaction)-[:RECEIVED_BY]->(a2:Address {address: $address2})
	`
	params := map[string]any{
		"address1": strings.ToLower(address1),
		"address2": strings.ToLower(address2),
	}

	var conditions []string
	if startTime != 0 {
		conditions = append(conditions, "t.timestamp >= $startTime")
		params["startTime"] = startTime
	}
	if endTime != 0 {
		conditions = append(conditions, "t.timestamp <= $endTime")
		params["endTime"] = endTime
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += `
		RETURN t.hash as hash, t.block_number as blockNumber, t.timestamp as timestamp, t.value_eth as value
		ORDER BY t.timestamp DESC
	`
	return s.driver.ExecuteQuery(ctx, query, params)
}

// TopSenders ranks senders to an address by transaction count descending.
func (s *Store) TopSenders(ctx context.Context, toAddress string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		MATCH (a:Address)-[:SENT]->(t:Transaction)-[:RECEIVED_BY]->(target:Address {address: $toAddress})
		RETURN a.address as address, count(t) as transactionCount, sum(t.value_eth) as totalValue
		ORDER BY transactionCount DESC
		LIMIT $limit
	`
	return s.driver.ExecuteQuery(ctx, query, map[string]any{
		"toAddress": strings.ToLower(toAddress),
		"limit":     limit,
	})
}

// AddressesAtDistance lists up to 100 distinct addresses at exactly the
// given hop count from the start address.
func (s *Store) AddressesAtDistance(ctx context.Context, fromAddress string, hops int) ([]map[string]any, error) {
	query := fmt.Sprintf(`
		MATCH path = (start:Address {address: $fromAddress})-[*%d]-(end:Address)
		WHERE length(path) = $hops AND start <> end
		RETURN DISTINCT end.address as address, length(path) as distance
		LIMIT 100
	`, hops)

	return s.driver.ExecuteQuery(ctx, query, map[string]any{
		"fromAddress": strings.ToLower(fromAddress),
		"hops":        hops,
	})
}

// TransactionGraph summarizes the network around an address within the
// given depth: the distinct connected addresses and relationship
// summaries. Returns nil when the address has no surroundings.
func (s *Store) TransactionGraph(ctx context.Context, address string, depth int) (map[string]any, error) {
	if depth <= 0 {
		depth = 2
	}
	query := fmt.Sprintf(`
		MATCH path = (center:Address {address: $address})-[*..%d]-(other:Address)
		WITH center, other, relationships(path) as rels
		RETURN center.address as centerAddress,
		       collect(DISTINCT other.address) as connectedAddresses,
		       collect(DISTINCT [r in rels | {type: type(r), properties: properties(r)}]) as relationships
		LIMIT 1
	`, depth)

	rows, err := s.driver.ExecuteQuery(ctx, query, map[string]any{
		"address": strings.ToLower(address),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// TransactionCount counts outgoing transactions for an address, optionally
// bounded by time.
func (s *Store) TransactionCount(ctx context.Context, address string, startTime, endTime int64) (int64, error) {
	query := `
		MATCH (a:Address {address: $address})-[:SENT]->(t:Transaction)
	`
	params := map[string]any{"address": strings.ToLower(address)}

	var conditions []string
	if startTime != 0 {
		conditions = append(conditions, "t.timestamp >= $startTime")
		params["startTime"] = startTime
	}
	if endTime != 0 {
		conditions = append(conditions, "t.timestamp <= $endTime")
		params["endTime"] = endTime
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " RETURN count(t) as count"

	rows, err := s.driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	count, _ := rows[0]["count"].(int64)
	return count, nil
}

// AddressInfo aggregates sent/received counts and totals for one address,
// or nil when the address has no graph presence.
func (s *Store) AddressInfo(ctx context.Context, address string) (map[string]any, error) {
	query := `
		MATCH (a:Address {address: $address})
		OPTIONAL MATCH (a)-[:SENT]->(t:Transaction)
		WITH a, count(t) as sentCount, sum(t.value_eth) as totalSent
		OPTIONAL MATCH (a)<-[:RECEIVED_BY]-(t2:Transaction)
		RETURN a.address as address,
		       sentCount,
		       totalSent,
		       count(t2) as receivedCount,
		       sum(t2.value_eth) as totalReceived
	`
	rows, err := s.driver.ExecuteQuery(ctx, query, map[string]any{
		"address": strings.ToLower(address),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// HealthCheck probes the store with a trivial query.
func (s *Store) HealthCheck(ctx context.Context) bool {
	rows, err := s.driver.ExecuteQuery(ctx, "RETURN 1 as result", nil)
	if err != nil {
		s.logger.Error("graph health check failed", "error", err)
		return false
	}
	if len(rows) == 0 {
		return false
	}
	result, _ := rows[0]["result"].(int64)
	return result == 1
}
