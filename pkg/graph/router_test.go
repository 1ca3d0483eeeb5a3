package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txlens/txlens/pkg/graph"
)

func newTestRouter(fd *fakeDriver) *graph.Router {
	return graph.NewRouter(graph.NewStore(fd, nil))
}

func TestRouterNilVariables(t *testing.T) {
	fd := &fakeDriver{}
	router := newTestRouter(fd)

	_, err := router.Execute(context.Background(), "query { topSenders }", nil)
	assert.ErrorIs(t, err, graph.ErrMissingVariables)
	// No graph session is opened for a nil bag.
	assert.Empty(t, fd.queries)
}

func TestRouterUnknownQuery(t *testing.T) {
	router := newTestRouter(&fakeDriver{})

	_, err := router.Execute(context.Background(), "query { somethingElse }", map[string]any{})
	assert.ErrorIs(t, err, graph.ErrUnknownQuery)
}

func TestRouterSubstringDispatch(t *testing.T) {
	fd := &fakeDriver{rows: []map[string]any{{"connected": true}}}
	router := newTestRouter(fd)

	vars := map[string]any{"fromAddress": lowerAddr, "toAddress": otherAddr}
	result, err := router.Execute(context.Background(), `query { checkDirectConnection(fromAddress: "...") }`, vars)
	require.NoError(t, err)
	assert.Equal(t, true, result["checkDirectConnection"])
}

func TestRouterMatchIsCaseInsensitive(t *testing.T) {
	fd := &fakeDriver{rows: []map[string]any{{"count": int64(3)}}}
	router := newTestRouter(fd)

	result, err := router.Execute(context.Background(), "TRANSACTIONCOUNT", map[string]any{"address": lowerAddr})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result["transactionCount"])
}

func TestRouterTopSendersLimit(t *testing.T) {
	fd := &fakeDriver{rows: []map[string]any{
		{"address": otherAddr, "transactionCount": int64(12)},
	}}
	router := newTestRouter(fd)

	// JSON-decoded numbers arrive as float64.
	vars := map[string]any{"toAddress": upperAddr, "limit": float64(3)}
	result, err := router.Execute(context.Background(), "query { topSenders(toAddress: ..., limit: 3) }", vars)
	require.NoError(t, err)

	assert.Equal(t, 3, fd.lastParams()["limit"])
	assert.Equal(t, lowerAddr, fd.lastParams()["toAddress"])

	rows := result["topSenders"].([]map[string]any)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(12), rows[0]["transactionCount"])
}

func TestRouterDefaultsWhenVariablesAbsent(t *testing.T) {
	fd := &fakeDriver{}
	router := newTestRouter(fd)

	_, err := router.Execute(context.Background(), "checkRelationship", map[string]any{
		"address1": lowerAddr,
		"address2": otherAddr,
	})
	require.NoError(t, err)
	assert.Contains(t, fd.lastQuery(), "[*..3]")
}

func TestRouterResultKeyedByOperation(t *testing.T) {
	names := []struct {
		query string
		key   string
		vars  map[string]any
		rows  []map[string]any
	}{
		{"shortestPath", "shortestPath", map[string]any{"fromAddress": lowerAddr, "toAddress": otherAddr}, nil},
		{"transactionsTo", "transactionsTo", map[string]any{"address": lowerAddr}, nil},
		{"transactionsBetween", "transactionsBetween", map[string]any{"address1": lowerAddr, "address2": otherAddr}, nil},
		{"addressesAtDistance", "addressesAtDistance", map[string]any{"fromAddress": lowerAddr, "hops": 2}, nil},
		{"transactionGraph", "transactionGraph", map[string]any{"address": lowerAddr}, nil},
		{"addressInfo", "addressInfo", map[string]any{"address": lowerAddr}, nil},
	}

	for _, tt := range names {
		t.Run(tt.key, func(t *testing.T) {
			router := newTestRouter(&fakeDriver{rows: tt.rows})
			result, err := router.Execute(context.Background(), tt.query, tt.vars)
			require.NoError(t, err)
			assert.Contains(t, result, tt.key)
		})
	}
}
