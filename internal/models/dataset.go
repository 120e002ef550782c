package models

import (
	"encoding/json"
	"time"
)

// Dataset is a stored raw dataset payload, keyed by its file name.
type Dataset struct {
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// DatasetInfo is a dataset listing entry without the payload.
type DatasetInfo struct {
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updatedAt"`
}
