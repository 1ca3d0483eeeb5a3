// Package extract turns free text into a structured parameter bag and a
// closed-set query intent. Every function here is total: malformed or
// empty input yields empty parameters and IntentUnknown, never an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/txlens/txlens/pkg/types"
)

// MaxPromptLength bounds sanitized input before any further processing.
const MaxPromptLength = 2000

var (
	addressPattern    = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)
	scriptScheme      = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerAttr  = regexp.MustCompile(`(?i)on\w+=`)
	timeRangePattern  = regexp.MustCompile(`(?i)from (.+?) to ([^,.;]+)`)
	timeSincePattern  = regexp.MustCompile(`(?i)(?:in the (?:last|past)|since) ([^,.;]+)`)
	thresholdPattern  = regexp.MustCompile(`(?i)(?:greater than|more than|above|over) (\d+\.?\d*\s*\w*)`)
	limitPattern      = regexp.MustCompile(`(?i)(?:top|first|limit)\s+(\d+)`)
	hopsPattern       = regexp.MustCompile(`(?i)(\d+)\s*hops?`)
	leadingNumPattern = regexp.MustCompile(`\d+\.?\d*`)
)

// relativeTime maps "N <unit>" expressions to second multipliers. The
// trailing "ago" is optional: the since-phrasings ("in the last 2 days",
// "since 3 hours") hand over a bare duration.
var relativeTime = []struct {
	re         *regexp.Regexp
	multiplier int64
}{
	{regexp.MustCompile(`(?i)(\d+)\s*hours?(?:\s*ago)?`), 3600},
	{regexp.MustCompile(`(?i)(\d+)\s*days?(?:\s*ago)?`), 86400},
	{regexp.MustCompile(`(?i)(\d+)\s*weeks?(?:\s*ago)?`), 604800},
	{regexp.MustCompile(`(?i)(\d+)\s*months?(?:\s*ago)?`), 2592000},
	{regexp.MustCompile(`(?i)(\d+)\s*years?(?:\s*ago)?`), 31536000},
}

var valueUnits = []struct {
	re         *regexp.Regexp
	multiplier float64
}{
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*eth`), 1},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*ether`), 1},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*gwei`), 0.000000001},
}

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// Sanitize strips control characters and script-injection substrings and
// truncates the text to MaxPromptLength.
func Sanitize(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)

	cleaned = strings.ReplaceAll(cleaned, "<", "")
	cleaned = strings.ReplaceAll(cleaned, ">", "")
	cleaned = scriptScheme.ReplaceAllString(cleaned, "")
	cleaned = eventHandlerAttr.ReplaceAllString(cleaned, "")

	cleaned = strings.TrimSpace(cleaned)
	if runes := []rune(cleaned); len(runes) > MaxPromptLength {
		cleaned = string(runes[:MaxPromptLength])
	}
	return cleaned
}

// Addresses returns every hex address in the text, lowercased and
// deduplicated in first-seen order.
func Addresses(text string) []string {
	matches := addressPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	addrs := make([]string, 0, len(matches))
	for _, m := range matches {
		addr := strings.ToLower(m)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		addrs = append(addrs, addr)
	}
	return addrs
}

// ParseTimeExpression converts a relative ("3 days ago", "yesterday") or
// absolute date expression into unix seconds. The second return is false
// when nothing matched.
func ParseTimeExpression(expr string) (int64, bool) {
	now := time.Now().Unix()
	lower := strings.ToLower(expr)

	for _, p := range relativeTime {
		if m := p.re.FindStringSubmatch(lower); m != nil {
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				continue
			}
			return now - n*p.multiplier, true
		}
	}

	switch {
	case strings.Contains(lower, "yesterday"):
		return now - 86400, true
	case strings.Contains(lower, "last week"):
		return now - 604800, true
	case strings.Contains(lower, "last month"):
		return now - 2592000, true
	}

	trimmed := strings.TrimSpace(expr)
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Unix(), true
		}
	}

	return 0, false
}

// ParseValueExpression converts "2.5 eth", "10 gwei" or a bare number into
// an ETH amount. The second return is false when nothing matched.
func ParseValueExpression(expr string) (float64, bool) {
	for _, u := range valueUnits {
		if m := u.re.FindStringSubmatch(expr); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			return v * u.multiplier, true
		}
	}

	if m := leadingNumPattern.FindString(expr); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v, true
		}
	}

	return 0, false
}

// Parameters extracts the full parameter bag from raw text. The input is
// sanitized first; absent fields stay zero.
func Parameters(input string) types.Params {
	text := Sanitize(input)
	params := types.Params{Addresses: Addresses(text)}

	if m := timeRangePattern.FindStringSubmatch(text); m != nil {
		if start, ok := ParseTimeExpression(m[1]); ok {
			params.TimeStart = start
		}
		if end, ok := ParseTimeExpression(m[2]); ok {
			params.TimeEnd = end
		}
	}
	if params.TimeStart == 0 {
		if m := timeSincePattern.FindStringSubmatch(text); m != nil {
			if start, ok := ParseTimeExpression(m[1]); ok {
				params.TimeStart = start
			}
		}
	}

	if m := thresholdPattern.FindStringSubmatch(text); m != nil {
		if v, ok := ParseValueExpression(m[1]); ok {
			params.Value = v
		}
	}

	if m := limitPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			params.Limit = n
		}
	}

	if m := hopsPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			params.Hops = n
		}
	}

	return params
}

// intentPatterns is checked in order; several patterns can match
// overlapping phrasings, so the order is load-bearing (connection before
// relationship, path before graph, counting before address info).
var intentPatterns = []struct {
	re     *regexp.Regexp
	intent types.Intent
}{
	{regexp.MustCompile(`(?i)(?:are|is).+(?:directly )?connected`), types.IntentCheckConnection},
	{regexp.MustCompile(`(?i)(?:are|is).+related`), types.IntentCheckRelationship},
	{regexp.MustCompile(`(?i)(?:shortest )?path (?:between|from)`), types.IntentFindPath},
	{regexp.MustCompile(`(?i)transactions? (?:sent )?to`), types.IntentGetTransactions},
	{regexp.MustCompile(`(?i)transactions? between`), types.IntentGetTransactionsBetween},
	{regexp.MustCompile(`(?i)top.+senders?`), types.IntentTopSenders},
	{regexp.MustCompile(`(?i)\d+\s*hops?\s*(?:away|from)`), types.IntentAddressesAtDistance},
	{regexp.MustCompile(`(?i)(?:transaction )?(?:graph|network)`), types.IntentTransactionGraph},
	{regexp.MustCompile(`(?i)(?:how many|count|number of) transactions?`), types.IntentTransactionCount},
	{regexp.MustCompile(`(?i)(?:info|information|details) (?:about|on|for)`), types.IntentAddressInfo},
}

// ClassifyIntent assigns exactly one intent to the text; the first
// matching pattern wins and IntentUnknown is the fallback.
func ClassifyIntent(input string) types.Intent {
	text := Sanitize(input)
	for _, p := range intentPatterns {
		if p.re.MatchString(text) {
			return p.intent
		}
	}
	return types.IntentUnknown
}
