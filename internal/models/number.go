package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Number is a numeric form field kept as the text the user typed.
// Blank or non-numeric text is a valid value; it reads as zero.
type Number string

// Float returns the numeric value, or 0 for blank, non-numeric, NaN and Inf.
func (n Number) Float() float64 {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// IsBlank reports whether the field holds no text at all.
func (n Number) IsBlank() bool {
	return strings.TrimSpace(string(n)) == ""
}

// IsNumeric reports whether the field parses as a finite number.
func (n Number) IsNumeric() bool {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// NumberOf formats f the way a user would type it (no trailing zeros).
func NumberOf(f float64) Number {
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
// The editing UI sends strings; hand-written plan files often use numbers.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("number field: %w", err)
	}
	*n = Number(num.String())
	return nil
}

// UnmarshalYAML accepts any scalar; null becomes blank.
func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("number field: expected a scalar, got line %d", value.Line)
	}
	if value.Tag == "!!null" {
		*n = ""
		return nil
	}
	*n = Number(value.Value)
	return nil
}
