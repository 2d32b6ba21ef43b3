package audit

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Sentinel replaces every sensitive value in a persisted snapshot.
const Sentinel = "[REDACTED]"

// sensitiveKeys lists field names whose values must never reach the audit
// store. Both the JSON/column spelling and the camelCase DTO spelling are
// covered because snapshots come from two sources: row maps read straight
// from the database, and submitted payloads.
var sensitiveKeys = map[string]struct{}{
	"password":           {},
	"resetToken":         {},
	"reset_token":        {},
	"resetTokenExpiry":   {},
	"reset_token_expiry": {},
}

// Redact walks a JSON-generic value (maps, slices, scalars) and substitutes
// the Sentinel for every sensitive key, at any nesting depth.
func Redact(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if _, bad := sensitiveKeys[k]; bad {
				out[k] = Sentinel
			} else {
				out[k] = Redact(inner)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = Redact(inner)
		}
		return out
	default:
		return v
	}
}

// marshalRedacted serializes v through a JSON round-trip so redaction sees a
// uniform map/slice shape regardless of the original Go type. Any failure
// yields a nil snapshot rather than an error.
func marshalRedacted(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	clean, err := json.Marshal(Redact(generic))
	if err != nil {
		return nil
	}
	return datatypes.JSON(clean)
}
