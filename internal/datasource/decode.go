package datasource

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/stwalsh4118/wardlens/internal/models"
)

// DecodeRecords parses a JSON array of flat records. Numbers are kept as
// json.Number so large identifiers survive intact.
func DecodeRecords(data []byte) ([]models.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []models.RawRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if records == nil {
		records = []models.RawRecord{}
	}
	return records, nil
}

// Decode parses data into a value of type T.
func Decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return v, nil
}
