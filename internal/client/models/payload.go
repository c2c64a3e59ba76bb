package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sh3xu/logbook/internal/common"
)

// DateLayout is the calendar date format of Payload.Date.
const DateLayout = "2006-01-02"

// Payload is the journal document sealed inside an envelope.
type Payload struct {
	Date    string             `json:"date"`
	Title   string             `json:"title"`
	Text    string             `json:"text"`
	Mood    string             `json:"mood,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Validate checks the fields every payload must carry.
func (p *Payload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrorIncorrectPayload)
	}
	if p.Date == "" {
		return fmt.Errorf("%w: date is required", common.ErrorIncorrectPayload)
	}
	return nil
}

// Marshal encodes the payload as JSON.
func (p *Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPayload decodes a JSON payload.
func UnmarshalPayload(b []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorIncorrectPayload, err)
	}
	return &p, nil
}

// MetricsFromStrings parses "name=value" pairs into a metrics map.
func MetricsFromStrings(items []string) (map[string]float64, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(items))
	for _, item := range items {
		name, raw, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: metric must be name=value", common.ErrorIncorrectPayload)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: metric %q is not a number", common.ErrorIncorrectPayload, name)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}
