package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// document is the object form of a JSON data file.
type document struct {
	Projects []*Record `json:"projects"`
}

// LoadJSON loads a portfolio from a JSON file.
func LoadJSON(path string) (*Portfolio, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open portfolio: %w", err)
	}
	defer file.Close()

	p, err := ReadJSON(file)
	if err != nil {
		return nil, err
	}

	p.source = path
	return p, nil
}

// ReadJSON reads project records from either a top-level array or an
// object with a "projects" array.
func ReadJSON(r io.Reader) (*Portfolio, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	var records []*Record
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		records = doc.Projects
	}

	p := NewPortfolio()
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("project %d: null record", i)
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		if err := p.Add(rec); err != nil {
			return nil, fmt.Errorf("project %d: %w", i, err)
		}
	}
	return p, nil
}

// WriteJSON writes the portfolio as an indented {"projects": [...]} document.
func (p *Portfolio) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Projects: p.All()}); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
