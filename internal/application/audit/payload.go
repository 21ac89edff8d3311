package audit

import (
	"github.com/inventa/backend/internal/domain/audit"
)

// CreatedPayload builds the changes of a create: {"new": after}
func CreatedPayload(after map[string]any) map[string]any {
	return map[string]any{audit.KeyNew: after}
}

// UpdatedPayload builds the changes of an update: {"before": before, "after": after}
func UpdatedPayload(before, after map[string]any) map[string]any {
	return map[string]any{audit.KeyBefore: before, audit.KeyAfter: after}
}

// DeletedPayload builds the changes of a soft delete: {"deleted": before}
func DeletedPayload(before map[string]any) map[string]any {
	return map[string]any{audit.KeyDeleted: before}
}

// RestoredPayload builds the changes of a restore from the still-trashed state
func RestoredPayload(before map[string]any) map[string]any {
	return map[string]any{audit.KeyRestored: before}
}

// ForceDeletedPayload builds the changes of a permanent delete: {"permanently_deleted": before}
func ForceDeletedPayload(before map[string]any) map[string]any {
	return map[string]any{audit.KeyPermanentlyDeleted: before}
}

// PayloadFor builds the changes for action from the captured snapshots.
// before is ignored for create and after is ignored for everything but create and update.
func PayloadFor(action audit.Action, before, after map[string]any) map[string]any {
	switch action {
	case audit.ActionCreate:
		return CreatedPayload(after)
	case audit.ActionUpdate:
		return UpdatedPayload(before, after)
	case audit.ActionDelete:
		return DeletedPayload(before)
	case audit.ActionRestore:
		return RestoredPayload(before)
	case audit.ActionForceDelete:
		return ForceDeletedPayload(before)
	default:
		return map[string]any{}
	}
}

// RedactFunc sanitizes a snapshot value before it is written to the audit trail.
// Returning false drops the key.
type RedactFunc func(key string, v any) (any, bool)

// RedactMap maps snapshot keys to their redaction
type RedactMap map[string]RedactFunc

// Drop removes the key from the snapshot
func Drop(string, any) (any, bool) { return nil, false }

// Mask replaces the value with a fixed marker
func Mask(string, any) (any, bool) { return "[REDACTED]", true }

// DefaultRedactions keeps credentials out of the audit trail
func DefaultRedactions() RedactMap {
	return RedactMap{
		"password":              Drop,
		"password_confirmation": Drop,
		"password_hash":         Drop,
		"remember_token":        Drop,
	}
}

// Apply returns a redacted copy of m. Nested maps are redacted too.
func (r RedactMap) Apply(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if fn, ok := r[k]; ok && fn != nil {
			redacted, keep := fn(k, v)
			if !keep {
				continue
			}
			out[k] = redacted
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = r.Apply(nested)
			continue
		}
		out[k] = v
	}
	return out
}
