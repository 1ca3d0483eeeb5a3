package extract_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txlens/txlens/pkg/extract"
	"github.com/txlens/txlens/pkg/types"
)

const (
	addrA = "0x1111111111111111111111111111111111111111"
	addrB = "0x2222222222222222222222222222222222222222"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "show transactions to " + addrA,
			want:  "show transactions to " + addrA,
		},
		{
			name:  "angle brackets removed",
			input: "show <script>alert(1)</script> data",
			want:  "show scriptalert(1)/script data",
		},
		{
			name:  "javascript scheme removed",
			input: "javascript:alert(1)",
			want:  "alert(1)",
		},
		{
			name:  "event handler attribute removed",
			input: "img onerror=alert(1)",
			want:  "img alert(1)",
		},
		{
			name:  "control characters removed",
			input: "hello\x00\x1bworld",
			want:  "helloworld",
		},
		{
			name:  "newline and tab kept",
			input: "hello\n\tworld",
			want:  "hello\n\tworld",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  hello  ",
			want:  "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract.Sanitize(tt.input))
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("a", extract.MaxPromptLength+500)
	got := extract.Sanitize(long)
	assert.Len(t, got, extract.MaxPromptLength)
}

func TestAddresses(t *testing.T) {
	mixed := "0xABCDEF1234567890abcdef1234567890ABCDEF12"

	t.Run("lowercased and deduplicated in order", func(t *testing.T) {
		text := "from " + mixed + " to " + addrB + " and back to " + strings.ToLower(mixed)
		got := extract.Addresses(text)
		require.Len(t, got, 2)
		assert.Equal(t, strings.ToLower(mixed), got[0])
		assert.Equal(t, addrB, got[1])
	})

	t.Run("too-short hex ignored", func(t *testing.T) {
		assert.Empty(t, extract.Addresses("0x1234 is not an address"))
	})

	t.Run("no addresses", func(t *testing.T) {
		assert.Empty(t, extract.Addresses("how many transactions happened today"))
	})
}

func TestParseTimeExpression(t *testing.T) {
	now := time.Now().Unix()

	t.Run("relative expressions", func(t *testing.T) {
		tests := []struct {
			expr   string
			offset int64
		}{
			{"3 hours ago", 3 * 3600},
			{"2 days ago", 2 * 86400},
			{"1 week ago", 604800},
			{"6 months ago", 6 * 2592000},
			{"1 year ago", 31536000},
			{"yesterday", 86400},
			{"last week", 604800},
			{"last month", 2592000},
			// Bare durations, as handed over by the since-phrasings.
			{"2 days", 2 * 86400},
			{"3 hours", 3 * 3600},
			{"1 week", 604800},
		}
		for _, tt := range tests {
			got, ok := extract.ParseTimeExpression(tt.expr)
			require.True(t, ok, tt.expr)
			assert.InDelta(t, now-tt.offset, got, 5, tt.expr)
		}
	})

	t.Run("absolute date", func(t *testing.T) {
		got, ok := extract.ParseTimeExpression("2024-01-15")
		require.True(t, ok)
		want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).Unix()
		assert.Equal(t, want, got)
	})

	t.Run("unparseable", func(t *testing.T) {
		_, ok := extract.ParseTimeExpression("the day the music died")
		assert.False(t, ok)
	})
}

func TestParseValueExpression(t *testing.T) {
	tests := []struct {
		expr string
		want float64
		ok   bool
	}{
		{"2.5 eth", 2.5, true},
		{"10 ETH", 10, true},
		{"1 ether", 1, true},
		{"5 gwei", 5e-9, true},
		{"42", 42, true},
		{"no number here", 0, false},
	}
	for _, tt := range tests {
		got, ok := extract.ParseValueExpression(tt.expr)
		assert.Equal(t, tt.ok, ok, tt.expr)
		if tt.ok {
			assert.InEpsilon(t, tt.want, got, 1e-12, tt.expr)
		}
	}
}

func TestParameters(t *testing.T) {
	t.Run("addresses and limit", func(t *testing.T) {
		p := extract.Parameters("show me the top 5 senders to " + addrA)
		assert.Equal(t, []string{addrA}, p.Addresses)
		assert.Equal(t, 5, p.Limit)
	})

	t.Run("value threshold", func(t *testing.T) {
		p := extract.Parameters("transactions to " + addrA + " greater than 2.5 eth")
		assert.InEpsilon(t, 2.5, p.Value, 1e-12)
	})

	t.Run("hops", func(t *testing.T) {
		p := extract.Parameters("addresses 3 hops away from " + addrA)
		assert.Equal(t, 3, p.Hops)
	})

	t.Run("time since", func(t *testing.T) {
		p := extract.Parameters("transactions to " + addrA + " in the last 2 days")
		assert.InDelta(t, time.Now().Unix()-2*86400, p.TimeStart, 5)
		assert.Zero(t, p.TimeEnd)
	})

	t.Run("since phrasing", func(t *testing.T) {
		p := extract.Parameters("transactions to " + addrA + " since 3 hours")
		assert.InDelta(t, time.Now().Unix()-3*3600, p.TimeStart, 5)
	})

	t.Run("empty input yields empty bag", func(t *testing.T) {
		p := extract.Parameters("")
		assert.Empty(t, p.Addresses)
		assert.Zero(t, p.TimeStart)
		assert.Zero(t, p.Limit)
	})
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		intent types.Intent
	}{
		{"direct connection", "are " + addrA + " and " + addrB + " directly connected?", types.IntentCheckConnection},
		{"relationship", "is " + addrA + " related to " + addrB + "?", types.IntentCheckRelationship},
		{"shortest path", "find the shortest path between " + addrA + " and " + addrB, types.IntentFindPath},
		{"transactions to", "show transactions sent to " + addrA, types.IntentGetTransactions},
		{"transactions between", "list transactions between " + addrA + " and " + addrB, types.IntentGetTransactionsBetween},
		{"top senders", "who are the top 5 senders to " + addrA + "?", types.IntentTopSenders},
		{"hop distance", "which addresses are 2 hops away from " + addrA + "?", types.IntentAddressesAtDistance},
		{"transaction graph", "show the transaction graph around " + addrA, types.IntentTransactionGraph},
		{"count", "how many transactions did " + addrA + " send?", types.IntentTransactionCount},
		{"address info", "give me information about " + addrA, types.IntentAddressInfo},
		{"unknown", "what is the meaning of life?", types.IntentUnknown},
		{"empty", "", types.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.intent, extract.ClassifyIntent(tt.input))
		})
	}
}

func TestClassifyIntentIsTotal(t *testing.T) {
	// Garbage in, UNKNOWN out. Never panics, never errors.
	inputs := []string{
		"\x00\x01\x02",
		strings.Repeat("x", 10000),
		"<script>alert(1)</script>",
		"   ",
	}
	for _, in := range inputs {
		assert.Equal(t, types.IntentUnknown, extract.ClassifyIntent(in))
	}
}
