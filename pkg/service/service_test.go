package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txlens/txlens/pkg/driver"
	"github.com/txlens/txlens/pkg/graph"
	"github.com/txlens/txlens/pkg/interpret"
	"github.com/txlens/txlens/pkg/llm"
	"github.com/txlens/txlens/pkg/service"
	"github.com/txlens/txlens/pkg/types"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// fakeClient returns scripted responses per policy, so the parse and
// narration calls can be controlled independently.
type fakeClient struct {
	byPolicy map[llm.Policy]*llm.Response
	errs     map[llm.Policy]error
	calls    []llm.Policy
}

func (f *fakeClient) Complete(ctx context.Context, system, prompt string, policy llm.Policy) (*llm.Response, error) {
	f.calls = append(f.calls, policy)
	if err := f.errs[policy]; err != nil {
		return nil, err
	}
	if resp := f.byPolicy[policy]; resp != nil {
		return resp, nil
	}
	return &llm.Response{Content: ""}, nil
}

func (f *fakeClient) Close() error { return nil }

type fakeGraph struct {
	rows []map[string]any
	err  error
}

func (f *fakeGraph) ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeGraph) VerifyConnectivity(ctx context.Context) error { return nil }
func (f *fakeGraph) Provider() driver.GraphProvider               { return driver.GraphProviderNeo4j }
func (f *fakeGraph) Close(ctx context.Context) error              { return nil }

func newService(client llm.Client, fg *fakeGraph, opts service.Options) *service.Service {
	store := graph.NewStore(fg, nil)
	return service.New(client, store, nil, opts)
}

func TestAskHappyPath(t *testing.T) {
	client := &fakeClient{byPolicy: map[llm.Policy]*llm.Response{
		llm.PolicyPrecise: {
			Content: `{"graphqlQuery": "query { topSenders(toAddress: \"` + addrA + `\", limit: 5) { address } }",
				"explanation": "Finds the top senders",
				"parameters": {"toAddress": "` + addrA + `", "limit": 5},
				"confidence": 0.92}`,
			Usage: llm.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		},
		llm.PolicyStandard: {Content: "The busiest sender is " + addrB + "."},
	}}
	fg := &fakeGraph{rows: []map[string]any{{"address": addrB, "transactionCount": int64(12)}}}

	resp, err := newService(client, fg, service.Options{Model: "gpt-4o"}).Ask(context.Background(), "top 5 senders to "+addrA)
	require.NoError(t, err)

	assert.Contains(t, resp.Query, "topSenders")
	assert.Equal(t, "Finds the top senders", resp.Explanation)
	assert.Equal(t, types.IntentTopSenders, resp.Intent)
	assert.InEpsilon(t, 0.92, resp.Confidence, 1e-9)
	assert.Equal(t, "The busiest sender is "+addrB+".", resp.Narration)

	results := resp.Results.(map[string]any)
	assert.Contains(t, results, "topSenders")
}

func TestAskUnknownIntentReturnsExplanationOnly(t *testing.T) {
	client := &fakeClient{byPolicy: map[llm.Policy]*llm.Response{
		llm.PolicyPrecise: {Content: "I can only answer questions about transaction graphs."},
	}}
	fg := &fakeGraph{}

	resp, err := newService(client, fg, service.Options{}).Ask(context.Background(), "what is the meaning of life?")
	require.NoError(t, err)

	assert.Empty(t, resp.Query)
	assert.Equal(t, types.IntentUnknown, resp.Intent)
	assert.Equal(t, "I can only answer questions about transaction graphs.", resp.Explanation)
	assert.Nil(t, resp.Results)
	// No narration call happens without results.
	assert.Equal(t, []llm.Policy{llm.PolicyPrecise}, client.calls)
}

func TestAskNarrationFallback(t *testing.T) {
	client := &fakeClient{
		byPolicy: map[llm.Policy]*llm.Response{
			llm.PolicyPrecise: {Content: `{"graphqlQuery": "query { addressInfo(address: \"` + addrA + `\") { address } }", "parameters": {"address": "` + addrA + `"}}`},
		},
		errs: map[llm.Policy]error{llm.PolicyStandard: llm.ErrTimeout},
	}
	fg := &fakeGraph{rows: []map[string]any{{"address": addrA, "sentCount": int64(2)}}}

	resp, err := newService(client, fg, service.Options{}).Ask(context.Background(), "info about "+addrA)
	require.NoError(t, err)
	assert.Equal(t, "Results retrieved successfully. See the data below for details.", resp.Narration)
	assert.NotNil(t, resp.Results)
}

func TestAskUnparseableResponse(t *testing.T) {
	client := &fakeClient{byPolicy: map[llm.Policy]*llm.Response{
		llm.PolicyPrecise: {Content: "I don't know."},
	}}

	_, err := newService(client, &fakeGraph{}, service.Options{}).Ask(context.Background(), "top senders to "+addrA)
	assert.ErrorIs(t, err, interpret.ErrParse)
}

func TestAskCompletionFailurePropagates(t *testing.T) {
	client := &fakeClient{errs: map[llm.Policy]error{llm.PolicyPrecise: llm.ErrRateLimited}}

	_, err := newService(client, &fakeGraph{}, service.Options{}).Ask(context.Background(), "top senders to "+addrA)
	assert.ErrorIs(t, err, llm.ErrRateLimited)
}

func TestAskGraphFailurePropagates(t *testing.T) {
	client := &fakeClient{byPolicy: map[llm.Policy]*llm.Response{
		llm.PolicyPrecise: {Content: `{"graphqlQuery": "query { transactionCount(address: \"` + addrA + `\") }", "parameters": {"address": "` + addrA + `"}}`},
	}}
	fg := &fakeGraph{err: driver.ErrQueryFailed}

	_, err := newService(client, fg, service.Options{}).Ask(context.Background(), "how many transactions from "+addrA)
	assert.ErrorIs(t, err, driver.ErrQueryFailed)
}

func TestExecuteDirect(t *testing.T) {
	fg := &fakeGraph{rows: []map[string]any{{"count": int64(9)}}}
	svc := newService(&fakeClient{}, fg, service.Options{})

	result, err := svc.Execute(context.Background(), "transactionCount", map[string]any{"address": addrA})
	require.NoError(t, err)
	assert.Equal(t, int64(9), result["transactionCount"])

	_, err = svc.Execute(context.Background(), "transactionCount", nil)
	assert.ErrorIs(t, err, graph.ErrMissingVariables)
}

// memoryCache is a map-backed Cache for exercising the completion cache
// path without touching disk.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Set(key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("key not found in cache")
}

func (m *memoryCache) Delete(key string) error { return nil }
func (m *memoryCache) Close() error            { return nil }

func TestParseQueryUsesCache(t *testing.T) {
	client := &fakeClient{byPolicy: map[llm.Policy]*llm.Response{
		llm.PolicyPrecise: {Content: `{"graphqlQuery": "query { addressInfo(address: \"` + addrA + `\") { address } }", "parameters": {"address": "` + addrA + `"}}`},
	}}
	svc := newService(client, &fakeGraph{}, service.Options{Cache: newMemoryCache()})

	_, err := svc.ParseQuery(context.Background(), "info about "+addrA)
	require.NoError(t, err)
	_, err = svc.ParseQuery(context.Background(), "info about "+addrA)
	require.NoError(t, err)

	// The second identical parse is served from the cache.
	assert.Len(t, client.calls, 1)
}

func TestHealthCheck(t *testing.T) {
	fg := &fakeGraph{rows: []map[string]any{{"result": int64(1)}}}
	assert.True(t, newService(&fakeClient{}, fg, service.Options{}).HealthCheck(context.Background()))

	bad := &fakeGraph{err: driver.ErrQueryFailed}
	assert.False(t, newService(&fakeClient{}, bad, service.Options{}).HealthCheck(context.Background()))
}
