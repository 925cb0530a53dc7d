package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Numeric is a number carried as text, the way form inputs submit counts and prices.
// It decodes from either a JSON string or a JSON number.
type Numeric string

// UnmarshalJSON accepts "12", 12, 12.5 and null.
func (n *Numeric) UnmarshalJSON(data []byte) error {
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
		*n = Numeric(s)
		return nil
	}
	*n = Numeric(data)
	return nil
}

// Int parses the leading integer of the value. ok is false when no digits lead the text.
func (n Numeric) Int() (int, bool) {
	return parseLeadingInt(string(n))
}

// IntOr returns the parsed integer or def when the text is not numeric.
func (n Numeric) IntOr(def int) int {
	v, ok := n.Int()
	if !ok {
		return def
	}
	return v
}

// Float parses the leading decimal number of the value.
func (n Numeric) Float() (float64, bool) {
	return parseLeadingFloat(string(n))
}

// FloatOr returns the parsed float or def when the text is not numeric.
func (n Numeric) FloatOr(def float64) float64 {
	v, ok := n.Float()
	if !ok {
		return def
	}
	return v
}

// NumericFromInt formats an int as Numeric.
func NumericFromInt(v int) Numeric {
	return Numeric(strconv.Itoa(v))
}

// Magnitudes beyond these bounds are treated as non-numeric so that sums and
// products over a ticket stay finite and never wrap.
const (
	MaxNumericInt   = 1_000_000_000
	MaxNumericFloat = 1e12
)

func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || v > MaxNumericInt || v < -MaxNumericInt {
		return 0, false
	}
	return int(v), true
}

func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		expDigits := exp
		for exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
			exp++
		}
		if exp > expDigits {
			end = exp
		}
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.Abs(v) > MaxNumericFloat {
		return 0, false
	}
	return v, true
}
