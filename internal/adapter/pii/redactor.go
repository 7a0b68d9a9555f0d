package pii

import (
	"log/slog"
	"strings"
)

const RedactedPlaceholder = "[REDACTED]"

// Redactor masks personally identifiable attributes (applicant email, phone
// number, ...) before they reach the log sink.
type Redactor struct {
	fieldsToRedact map[string]struct{} // Use a map for O(1) lookups
}

// NewRedactor creates a new Redactor for the given attribute keys.
// Keys are matched case-insensitively; blank entries are ignored.
func NewRedactor(fields []string) *Redactor {
	fieldSet := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "" {
			continue
		}
		fieldSet[field] = struct{}{}
	}
	return &Redactor{fieldsToRedact: fieldSet}
}

// ShouldRedact reports whether values stored under key must be masked.
func (r *Redactor) ShouldRedact(key string) bool {
	if r == nil || len(r.fieldsToRedact) == 0 {
		return false
	}
	_, ok := r.fieldsToRedact[strings.ToLower(key)]
	return ok
}

// ReplaceAttr is meant for slog.HandlerOptions.ReplaceAttr. Group attributes
// are walked so nested keys are masked too.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]any, 0, len(attrs))
		for _, ga := range attrs {
			redacted = append(redacted, r.ReplaceAttr(nil, ga))
		}
		return slog.Group(a.Key, redacted...)
	}
	if r.ShouldRedact(a.Key) {
		return slog.String(a.Key, RedactedPlaceholder)
	}
	return a
}

// RedactMap masks matching keys of m in place and reports whether anything
// was replaced.
func (r *Redactor) RedactMap(m map[string]any) bool {
	redacted := false
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			if r.RedactMap(nested) {
				redacted = true
			}
			continue
		}
		if r.ShouldRedact(k) {
			m[k] = RedactedPlaceholder
			redacted = true
		}
	}
	return redacted
}
