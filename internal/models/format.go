package models

import (
	"fmt"
	"strings"
)

// NumberFormat is the closed set of display formats a field can carry.
type NumberFormat int

const (
	FormatCount NumberFormat = iota
	FormatCurrency
	FormatPercent
	FormatRatio
	FormatBoolean
)

var numberFormatNames = [...]string{
	FormatCount:    "count",
	FormatCurrency: "currency",
	FormatPercent:  "percent",
	FormatRatio:    "ratio",
	FormatBoolean:  "boolean",
}

// String returns the canonical name of the format.
func (f NumberFormat) String() string {
	if f < 0 || int(f) >= len(numberFormatNames) {
		return fmt.Sprintf("NumberFormat(%d)", int(f))
	}
	return numberFormatNames[f]
}

// ParseNumberFormat parses a format name. "number" is accepted as an alias
// for count because the field tables were written with that spelling.
func ParseNumberFormat(s string) (NumberFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "count", "number":
		return FormatCount, nil
	case "currency":
		return FormatCurrency, nil
	case "percent":
		return FormatPercent, nil
	case "ratio":
		return FormatRatio, nil
	case "boolean":
		return FormatBoolean, nil
	}
	return FormatCount, fmt.Errorf("unknown number format %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f NumberFormat) MarshalText() ([]byte, error) {
	if f < 0 || int(f) >= len(numberFormatNames) {
		return nil, fmt.Errorf("invalid number format %d", int(f))
	}
	return []byte(numberFormatNames[f]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It is used by both the
// JSON and YAML decoders.
func (f *NumberFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseNumberFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
