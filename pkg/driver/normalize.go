package driver

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Normalize recursively lowers a graph-native value into plain portable
// data: nodes and relationships become maps carrying their properties,
// paths become ordered segment lists, temporal values become RFC3339
// strings. Normalizing an already-plain value returns it unchanged, so
// the function is idempotent.
func Normalize(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case dbtype.Node:
		return normalizeNode(v)
	case dbtype.Relationship:
		return normalizeRelationship(v)
	case dbtype.Path:
		return normalizePath(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Normalize(item)
		}
		return out
	case time.Time:
		return v.Format(time.RFC3339)
	case dbtype.Date:
		return v.Time().Format(time.RFC3339)
	case dbtype.LocalDateTime:
		return v.Time().Format(time.RFC3339)
	case dbtype.LocalTime:
		return v.Time().Format(time.RFC3339)
	case dbtype.Duration:
		return v.String()
	default:
		// int64, float64, string, bool pass through with exact values.
		return v
	}
}

func normalizeNode(node dbtype.Node) map[string]any {
	out := make(map[string]any, len(node.Props)+1)
	for k, v := range node.Props {
		out[k] = Normalize(v)
	}
	out["labels"] = node.Labels
	return out
}

func normalizeRelationship(rel dbtype.Relationship) map[string]any {
	out := make(map[string]any, len(rel.Props)+1)
	for k, v := range rel.Props {
		out[k] = Normalize(v)
	}
	out["type"] = rel.Type
	return out
}

func normalizePath(path dbtype.Path) map[string]any {
	nodesByID := make(map[string]dbtype.Node, len(path.Nodes))
	for _, n := range path.Nodes {
		nodesByID[n.ElementId] = n
	}

	var current dbtype.Node
	if len(path.Nodes) > 0 {
		current = path.Nodes[0]
	}

	segments := make([]any, 0, len(path.Relationships))
	for _, rel := range path.Relationships {
		start := nodesByID[rel.StartElementId]
		end := nodesByID[rel.EndElementId]
		// Orient each segment to continue from the node reached so far;
		// relationships in a path are not guaranteed to point forward.
		if end.ElementId == current.ElementId {
			start, end = end, start
		}
		segments = append(segments, map[string]any{
			"start":        normalizeNode(start),
			"relationship": normalizeRelationship(rel),
			"end":          normalizeNode(end),
		})
		current = end
	}

	out := map[string]any{
		"segments": segments,
		"length":   int64(len(path.Relationships)),
	}
	if len(path.Nodes) > 0 {
		out["start"] = normalizeNode(path.Nodes[0])
		out["end"] = normalizeNode(current)
	}
	return out
}
