package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Keys used by the survey extracts to identify a district record.
// The extracts are inconsistent: some carry GEOID, some districtId, and
// the display name is only present in a subset of files.
const (
	IDField      = "GEOID"
	AltIDField   = "districtId"
	NameField    = "NAMELSAD"
	AltNameField = "NAME"
)

// RawRecord is one loosely-typed row of a survey extract, keyed by field code.
// Values are whatever the JSON decoder produced (float64, string, bool, nil).
type RawRecord map[string]any

// ID returns the district identifier of the record as a string.
// Numeric identifiers are rendered without a fractional part.
func (r RawRecord) ID() string {
	for _, key := range []string{IDField, AltIDField} {
		if v, ok := r[key]; ok && v != nil {
			return stringify(v)
		}
	}
	return ""
}

// Name returns the display name of the record, or an empty string.
func (r RawRecord) Name() string {
	for _, key := range []string{NameField, AltNameField, "name"} {
		if v, ok := r[key]; ok && v != nil {
			return stringify(v)
		}
	}
	return ""
}

// Number reads a numeric field. Numeric strings are accepted because some
// census extracts ship every value as text. The second return is false when
// the field is absent, null, or not numeric.
func (r RawRecord) Number(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberOr reads a numeric field and falls back to def when it is missing.
func (r RawRecord) NumberOr(key string, def float64) float64 {
	if v, ok := r.Number(key); ok {
		return v
	}
	return def
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Code is a string identifier that some feeds encode as a JSON number
// (ward numbers, postal codes, record IDs).
type Code string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (c *Code) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Code(n.String())
	return nil
}

// String returns the code with surrounding whitespace removed.
func (c Code) String() string {
	return strings.TrimSpace(string(c))
}
