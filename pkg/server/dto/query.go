package dto

// QueryRequest is a natural-language question about the transaction graph
type QueryRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// QueryResponse mirrors types.QueryResponse at the HTTP boundary
type QueryResponse struct {
	Query       string  `json:"graphqlQuery,omitempty"`
	Explanation string  `json:"explanation"`
	Results     any     `json:"results,omitempty"`
	Narration   string  `json:"narration,omitempty"`
	Intent      string  `json:"intent"`
	Confidence  float64 `json:"confidence"`
}

// GraphQLRequest executes a query directly, bypassing the language model
type GraphQLRequest struct {
	Query     string         `json:"query" binding:"required"`
	Variables map[string]any `json:"variables"`
}

// GraphQLResponse follows the usual data/errors envelope. Data is null
// when execution fails.
type GraphQLResponse struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError carries a single execution error message
type GraphQLError struct {
	Message string `json:"message"`
}

// ValidateRequest asks for an advisory check of a query string
type ValidateRequest struct {
	Query string `json:"query" binding:"required"`
}

// ValidateResponse lists the issues found; Valid is true when none were
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}
