package types

// Intent classifies the purpose of a natural-language query. Exactly one
// intent is assigned per input; IntentUnknown is the terminal catch-all.
type Intent string

const (
	IntentCheckConnection        Intent = "CHECK_CONNECTION"
	IntentCheckRelationship      Intent = "CHECK_RELATIONSHIP"
	IntentFindPath               Intent = "FIND_PATH"
	IntentGetTransactions        Intent = "GET_TRANSACTIONS"
	IntentGetTransactionsBetween Intent = "GET_TRANSACTIONS_BETWEEN"
	IntentTopSenders             Intent = "TOP_SENDERS"
	IntentAddressesAtDistance    Intent = "ADDRESSES_AT_DISTANCE"
	IntentTransactionGraph       Intent = "TRANSACTION_GRAPH"
	IntentTransactionCount       Intent = "TRANSACTION_COUNT"
	IntentAddressInfo            Intent = "ADDRESS_INFO"
	IntentUnknown                Intent = "UNKNOWN"
)

// Params is the parameter bag extracted from free text. Addresses are
// lowercased, deduplicated and kept in first-seen order; times are unix
// seconds; Value is an ETH amount.
type Params struct {
	Addresses []string `json:"addresses"`
	TimeStart int64    `json:"timeStart,omitempty"`
	TimeEnd   int64    `json:"timeEnd,omitempty"`
	Value     float64  `json:"value,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Hops      int      `json:"hops,omitempty"`
}

// Map renders the bag as a variable map with only present fields, the
// shape consumed by the query router.
func (p Params) Map() map[string]any {
	m := map[string]any{"addresses": p.Addresses}
	if p.TimeStart != 0 {
		m["timeStart"] = p.TimeStart
	}
	if p.TimeEnd != 0 {
		m["timeEnd"] = p.TimeEnd
	}
	if p.Value != 0 {
		m["value"] = p.Value
	}
	if p.Limit != 0 {
		m["limit"] = p.Limit
	}
	if p.Hops != 0 {
		m["hops"] = p.Hops
	}
	return m
}

// ParsedQuery is the interpreter's output for one request. Query is empty
// when the intent is unknown; the pipeline then returns only the
// explanation. Parameters is the variable bag handed to the router: the
// model's own parameter object when it supplied one, otherwise the
// extracted bag.
type ParsedQuery struct {
	Query       string         `json:"graphqlQuery,omitempty"`
	Explanation string         `json:"explanation"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Intent      Intent         `json:"intent,omitempty"`
	Confidence  float64        `json:"confidence,omitempty"`
}

// QueryResponse is the full answer to a natural-language question.
type QueryResponse struct {
	Query       string  `json:"query,omitempty"`
	Explanation string  `json:"explanation"`
	Results     any     `json:"results"`
	Narration   string  `json:"narration,omitempty"`
	Intent      Intent  `json:"intent"`
	Confidence  float64 `json:"confidence,omitempty"`
}
