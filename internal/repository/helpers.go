// Package repository implements data access against the document store.
// Repositories return (nil, nil) for lookups that find nothing; translating
// absence into an error is the service layer's job.
package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/shelfstack/api/internal/model"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// isUniqueConstraintError checks if an error is a unique index violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already contains")
}

// queryRows unwraps a Query response ([{status, result: [...]}]) into the
// raw row slice of the first statement.
func queryRows(results []interface{}) []interface{} {
	if len(results) == 0 {
		return nil
	}
	if resp, ok := results[0].(map[string]interface{}); ok {
		if rows, ok := resp["result"].([]interface{}); ok {
			return rows
		}
	}
	return results
}

// recordMaps unwraps a Query response into record maps, skipping anything
// that isn't an object.
func recordMaps(results []interface{}) []map[string]interface{} {
	rows := queryRows(results)
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// countDiffs counts rows of a RETURN DIFF mutation that carry a non-empty
// patch, i.e. records the mutation actually changed. A matched record whose
// values were already equal produces an empty patch and does not count.
func countDiffs(results []interface{}) int {
	modified := 0
	for _, row := range queryRows(results) {
		if patch, ok := row.([]interface{}); ok && len(patch) > 0 {
			modified++
		}
	}
	return modified
}

// convertRecordID converts a SurrealDB record ID in any of the shapes the
// client returns into the canonical "table:hex" string form.
func convertRecordID(id interface{}) model.ID {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return model.ID(v)
	case model.ID:
		return v
	case models.RecordID:
		return model.ID(fmt.Sprintf("%s:%v", v.Table, v.ID))
	case *models.RecordID:
		if v != nil {
			return model.ID(fmt.Sprintf("%s:%v", v.Table, v.ID))
		}
	case map[string]interface{}:
		tb, _ := v["tb"].(string)
		if tb == "" {
			tb, _ = v["Table"].(string)
		}
		inner := v["id"]
		if inner == nil {
			inner = v["ID"]
		}
		if s, ok := inner.(string); ok && tb != "" {
			return model.ID(tb + ":" + s)
		}
	}
	return model.ID(fmt.Sprintf("%v", id))
}

// getString extracts a string value from a record map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getStringSlice extracts a string slice from a record map
func getStringSlice(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// getIDSlice extracts record references from a record map
func getIDSlice(m map[string]interface{}, key string) []model.ID {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]model.ID, 0, len(raw))
	for _, item := range raw {
		out = append(out, convertRecordID(item))
	}
	return out
}

// getTime extracts a timestamp from a record map
func getTime(m map[string]interface{}, key string) time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	case models.CustomDateTime:
		return v.Time
	case *models.CustomDateTime:
		if v != nil {
			return v.Time
		}
	}
	return time.Time{}
}

// idVars builds the common $id variable map for a record reference.
func idVars(id model.ID) map[string]interface{} {
	return map[string]interface{}{"id": id.String()}
}

// idStrings converts references to their string form for query binding.
func idStrings(ids []model.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
