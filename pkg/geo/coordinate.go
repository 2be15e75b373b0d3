// Package geo decodes coordinate values as they appear in open-data tables.
package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned when a coordinate cell holds a value that cannot be read as a
// number.
var ErrNotNumeric = errors.New("coordinate is not numeric")

// ParseCoordinate reads a single coordinate cell. CKAN returns numeric columns as JSON
// numbers and text columns as strings, so both are accepted. Null, missing and blank
// cells yield nil without an error.
func ParseCoordinate(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotNumeric, err)
		}
		return parseText(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotNumeric, err)
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, raw)
	}
}

func parseText(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return &v, nil
}
