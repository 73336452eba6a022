// internal/models/base.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Coordinates is the JSONB column for a field's location.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan unmarshals a JSONB column into the struct.
func (c *Coordinates) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("Coordinates: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, c)
}

// StringSlice is a JSONB-backed list of strings (e.g. preferred roles).
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan unmarshals a JSONB column into the slice.
func (s *StringSlice) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("StringSlice: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, s)
}
