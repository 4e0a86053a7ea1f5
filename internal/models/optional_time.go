package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Admin forms post datetime-local values without a zone; those are read as UTC.
var optionalTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// OptionalTime records whether a timestamp was present in a payload, so an
// explicit null can clear a value while an absent field leaves it untouched.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (ot *OptionalTime) UnmarshalJSON(data []byte) error {
	if ot == nil {
		return fmt.Errorf("optional time receiver is nil")
	}
	ot.Set = true

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		ot.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		ot.Value = nil
		return nil
	}

	for _, layout := range optionalTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			utc := parsed.UTC()
			ot.Value = &utc
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}

// Or returns the payload value when the field was present, otherwise fallback.
func (ot OptionalTime) Or(fallback *time.Time) *time.Time {
	if ot.Set {
		return ot.Value
	}
	return fallback
}
