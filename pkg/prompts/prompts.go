// Package prompts holds the instruction templates sent to the completion
// service and the deterministic contextual prompt builder.
package prompts

import (
	"fmt"
	"strings"

	"github.com/txlens/txlens/pkg/types"
)

// QueryParser instructs the model to translate a natural-language question
// into one of the catalog operations.
const QueryParser = `You are an expert at converting natural language queries about Ethereum blockchain transactions into GraphQL queries.

Your task is to understand the user's intent and generate the appropriate GraphQL query that will retrieve the requested information from a Neo4j graph database.

The database schema:
- Nodes: Address (with property: address), Transaction (with properties: hash, block_number, timestamp, value_eth)
- Relationships: SENT (from Address to Transaction), RECEIVED_BY (from Transaction to Address)

Available GraphQL queries:
1. checkDirectConnection(fromAddress, toAddress) - Check if two addresses have direct transactions
2. checkRelationship(address1, address2, maxHops) - Check if addresses are related through paths
3. shortestPath(fromAddress, toAddress) - Find shortest path between addresses
4. transactionsTo(address, startTime, endTime, minValue) - Get transactions sent to an address
5. transactionsBetween(address1, address2, startTime, endTime) - Get transactions between two addresses
6. topSenders(toAddress, limit) - Get top senders to an address
7. addressesAtDistance(fromAddress, hops) - Get addresses at specific hop distance
8. transactionGraph(address, depth) - Get transaction network around an address
9. transactionCount(address, startTime, endTime) - Get transaction count for an address
10. addressInfo(address) - Get information about an address

Important rules:
1. Always normalize Ethereum addresses to lowercase
2. Convert date/time references to Unix timestamps
3. Use appropriate field selections based on the query type
4. Include helpful explanations of what the query does
5. Handle ambiguous queries by choosing the most likely interpretation

Return your response as a JSON object with this structure:
{
  "graphqlQuery": "the complete GraphQL query string",
  "explanation": "human-readable explanation of what the query does",
  "parameters": {}
}`

// ResultExplainer instructs the model to narrate query results in plain
// language.
const ResultExplainer = `You are an expert at explaining blockchain transaction analysis results in clear, non-technical language.

Your task is to take the results of a GraphQL query about Ethereum transactions and explain them in a way that anyone can understand.

Focus on:
1. Summarizing the key findings
2. Explaining what the relationships mean
3. Highlighting interesting patterns or anomalies
4. Providing context about transaction values and timing
5. Making technical concepts accessible

Be concise but informative. Use analogies when helpful.`

// Contextual composes the user-facing prompt from the original question,
// the extracted parameters and the classified intent. It lists only fields
// that are present and is stable under repeated calls with the same input.
func Contextual(original string, params types.Params, intent types.Intent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User Query: %q\n\n", original)

	if len(params.Addresses) > 0 {
		fmt.Fprintf(&b, "Detected Addresses: %s\n", strings.Join(params.Addresses, ", "))
	}
	if params.TimeStart != 0 {
		fmt.Fprintf(&b, "Time Start: %d (Unix timestamp)\n", params.TimeStart)
	}
	if params.TimeEnd != 0 {
		fmt.Fprintf(&b, "Time End: %d (Unix timestamp)\n", params.TimeEnd)
	}
	if params.Value != 0 {
		fmt.Fprintf(&b, "Value Filter: %g ETH\n", params.Value)
	}
	if params.Limit != 0 {
		fmt.Fprintf(&b, "Limit: %d\n", params.Limit)
	}
	if params.Hops != 0 {
		fmt.Fprintf(&b, "Hops: %d\n", params.Hops)
	}

	if intent != types.IntentUnknown {
		fmt.Fprintf(&b, "\nDetected Intent: %s\n\n", intent)
		b.WriteString("Please generate the appropriate GraphQL query based on this information.")
	}

	return b.String()
}

// Narration composes the prompt for the result-explanation call. When no
// results are available the model is asked to answer the question
// directly.
func Narration(question string, resultsJSON string) string {
	if resultsJSON == "" {
		return fmt.Sprintf(`
Original Question: %s

Please answer the question briefly. If there's available data for this question, answer based on that data.
`, question)
	}
	return fmt.Sprintf(`
Original Query: %s

Results:
%s

Please explain these results in clear, simple language that anyone can understand.
`, question, resultsJSON)
}
