package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingTimestamp is returned when an event record has no "ts" field.
var ErrMissingTimestamp = errors.New("event is missing required field ts")

type Event struct {
	UserID string         `json:"user_id"`
	TS     int64          `json:"ts"`             // unix seconds
	Type   string         `json:"type,omitempty"` // view|click|scroll|...
	Meta   map[string]any `json:"meta,omitempty"` // arbitrary nested JSON
}

// UnmarshalJSON decodes an event leniently: user_id, type and meta default to
// their zero values, but ts is required. A falsy meta (null, false, 0, "" or
// []) counts as absent. Numbers inside meta are kept as json.Number so
// integers survive a round trip unchanged.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		UserID *string          `json:"user_id"`
		TS     *int64           `json:"ts"`
		Type   *string          `json:"type"`
		Meta   *json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.TS == nil {
		return ErrMissingTimestamp
	}

	*e = Event{TS: *raw.TS}
	if raw.UserID != nil {
		e.UserID = *raw.UserID
	}
	if raw.Type != nil {
		e.Type = *raw.Type
	}
	if raw.Meta != nil && !falsyJSON(*raw.Meta) {
		meta, err := DecodeMeta(*raw.Meta)
		if err != nil {
			return fmt.Errorf("failed to decode meta: %w", err)
		}
		e.Meta = meta
	}
	return nil
}

// DecodeMeta decodes a JSON object into a nested map, keeping numbers as json.Number.
func DecodeMeta(data []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var meta map[string]any
	if err := decoder.Decode(&meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// falsyJSON reports whether data is null, false, a zero number, an empty
// string or an empty array.
func falsyJSON(data []byte) bool {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return false
	}
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	default:
		return false
	}
}

type Session struct {
	UserID  string         `json:"user_id" yaml:"user_id"`
	StartTS int64          `json:"start_ts" yaml:"start_ts"`
	EndTS   int64          `json:"end_ts" yaml:"end_ts"`
	Types   []string       `json:"types" yaml:"types"`
	Meta    map[string]any `json:"meta" yaml:"meta"`
}

// Duration returns the number of seconds between the first and last event.
func (s Session) Duration() int64 {
	return s.EndTS - s.StartTS
}

// Batch is the browsetrace ingestion envelope.
type Batch struct {
	Events []Event `json:"events"`
}
