package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// TraitMeasurement is one named, scored facet of a Result (0-100 scale).
type TraitMeasurement struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Valid reports whether the measurement is usable by the analytics engine.
func (t TraitMeasurement) Valid() bool {
	return t.Name != "" && t.Score >= 0 && t.Score <= 100
}

// TraitMeasurements is the ordered trait list persisted on a Result as JSONB.
// Validation happens once here, at the storage boundary: malformed entries are
// quarantined (dropped with a warning) on Scan instead of being re-checked at
// every consumer.
type TraitMeasurements []TraitMeasurement

func (t TraitMeasurements) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal trait measurements: %w", err)
	}
	return string(b), nil
}

func (t *TraitMeasurements) Scan(value any) error {
	if value == nil {
		*t = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported trait column type %T", value)
	}

	parsed, skipped := ParseTraitMeasurements(raw)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Quarantined malformed trait measurements on scan")
	}
	*t = parsed
	return nil
}

// ParseTraitMeasurements decodes a stored trait list, skipping malformed
// entries rather than failing the whole row. It also tolerates the legacy
// double-encoded form where the array itself was stored as a JSON string.
func ParseTraitMeasurements(raw []byte) (TraitMeasurements, int) {
	if len(raw) == 0 {
		return nil, 0
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		var nested string
		if err2 := json.Unmarshal(raw, &nested); err2 != nil {
			return nil, 1
		}
		if err2 := json.Unmarshal([]byte(nested), &entries); err2 != nil {
			return nil, 1
		}
	}

	out := make(TraitMeasurements, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		var m TraitMeasurement
		if err := json.Unmarshal(entry, &m); err != nil || !m.Valid() {
			skipped++
			continue
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, skipped
	}
	return out, skipped
}
