// Package eventio reads events from and writes sessions to JSON and YAML files.
package eventio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vincentbai/browsetrace-sessions/internal/models"
)

// ErrEmptyInput is returned when an events document contains no JSON value.
var ErrEmptyInput = errors.New("events input is empty")

// ReadEvents decodes either a JSON array of events or a browsetrace batch
// envelope ({"events": [...]}).
func ReadEvents(r io.Reader) ([]models.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	var events []models.Event
	if data[0] == '{' {
		var batch models.Batch
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode event batch: %w", err)
		}
		events = batch.Events
	} else if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// LoadFile reads events from the JSON file at path.
func LoadFile(path string) ([]models.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()
	return ReadEvents(f)
}

// WriteJSON encodes v as JSON, indented with two spaces when indent is set.
func WriteJSON(w io.Writer, v any, indent bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// SaveFile writes v as JSON to path, creating parent directories.
func SaveFile(path string, v any, indent bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteJSON(f, v, indent); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteYAML writes sessions as a YAML sequence. Numbers decoded from JSON are
// emitted as YAML numbers rather than quoted strings.
func WriteYAML(w io.Writer, sessions []models.Session) error {
	out := make([]models.Session, len(sessions))
	for i, session := range sessions {
		out[i] = session
		out[i].Meta, _ = plainValue(session.Meta).(map[string]any)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return encoder.Close()
}

func plainValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = plainValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plainValue(item)
		}
		return out
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return v
	}
}
