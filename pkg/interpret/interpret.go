// Package interpret parses completion-service output into a ParsedQuery.
// Strict JSON is tried first, then a repair pass, then a scan for an
// embedded query block; only when all three fail is the request failed.
package interpret

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/txlens/txlens/pkg/types"
)

// ErrParse is the terminal parsing failure for a request. It is surfaced
// to the caller and never retried.
var ErrParse = errors.New("failed to parse completion service response")

var (
	fencePattern      = regexp.MustCompile("```(?:json)?\n?")
	queryBlockPattern = regexp.MustCompile(`(?is)query\s*\{.*\}`)
)

// structuredResponse mirrors the JSON shape the query parser prompt asks
// the model to produce.
type structuredResponse struct {
	GraphqlQuery string         `json:"graphqlQuery"`
	Query        string         `json:"query"`
	Explanation  string         `json:"explanation"`
	Parameters   map[string]any `json:"parameters"`
	Confidence   float64        `json:"confidence"`
}

func (r structuredResponse) hasQuery() bool {
	return r.GraphqlQuery != "" || r.Query != ""
}

// StripFences removes code-fence markers and surrounding whitespace.
func StripFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}

// Interpret converts raw completion text into a ParsedQuery. For an
// unknown intent the text is returned as a bare explanation with no query.
func Interpret(raw string, params types.Params, intent types.Intent) (*types.ParsedQuery, error) {
	formatted := StripFences(raw)

	if intent == types.IntentUnknown {
		return &types.ParsedQuery{Explanation: formatted, Intent: types.IntentUnknown}, nil
	}

	if parsed, ok := parseStructured(formatted); ok {
		result := &types.ParsedQuery{
			Query:       parsed.GraphqlQuery,
			Explanation: parsed.Explanation,
			Parameters:  parsed.Parameters,
			Intent:      intent,
			Confidence:  parsed.Confidence,
		}
		if result.Query == "" {
			result.Query = parsed.Query
		}
		if result.Explanation == "" {
			result.Explanation = "Query generated successfully"
		}
		if result.Parameters == nil {
			result.Parameters = params.Map()
		}
		if result.Confidence == 0 {
			result.Confidence = 0.9
		}
		return result, nil
	}

	if block := queryBlockPattern.FindString(formatted); block != "" {
		return &types.ParsedQuery{
			Query:       block,
			Explanation: "Query extracted from response",
			Parameters:  params.Map(),
			Intent:      intent,
		}, nil
	}

	return nil, ErrParse
}

func parseStructured(text string) (structuredResponse, bool) {
	var parsed structuredResponse
	if err := json.Unmarshal([]byte(text), &parsed); err == nil && parsed.hasQuery() {
		return parsed, true
	}

	// Models often emit near-JSON (trailing commas, single quotes); a
	// repair pass recovers those without loosening the object requirement.
	// Repair "succeeds" on almost anything, so the result only counts
	// when it carries a query; otherwise the block scan gets its turn.
	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil || !strings.HasPrefix(strings.TrimSpace(repaired), "{") {
		return structuredResponse{}, false
	}
	parsed = structuredResponse{}
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil || !parsed.hasQuery() {
		return structuredResponse{}, false
	}
	return parsed, true
}

// Validate performs shallow static checks on a generated query. The
// returned issues are advisory; execution is never blocked on them.
func Validate(query string) []string {
	var issues []string

	if !strings.Contains(query, "query") && !strings.Contains(query, "mutation") {
		issues = append(issues, `query must contain "query" or "mutation"`)
	}
	if !strings.Contains(query, "{") || !strings.Contains(query, "}") {
		issues = append(issues, "query must have opening and closing braces")
	}
	if strings.Count(query, "{") != strings.Count(query, "}") {
		issues = append(issues, "unbalanced braces in query")
	}

	return issues
}
