package budget

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNotDecimal = errors.New("not a decimal number")

// parseDecimal accepts plain and scientific decimal notation, digit
// underscores and the infinities ("inf", "Infinity"). Hex floats and NaN are
// rejected. Infinities and values that overflow float64 come back as ±Inf so
// that the range check reports them.
func parseDecimal(s string) (float64, error) {
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "0x") || strings.Contains(lower, "nan") {
		return 0, fmt.Errorf("%q: %w", s, errNotDecimal)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f, nil
		}
		return 0, fmt.Errorf("%q: %w", s, errNotDecimal)
	}
	return f, nil
}

// FormatLPA renders v the way amounts appear in messages: the shortest
// round-tripping form, always with a fractional part or an exponent
// (85 -> "85.0", 85.5 -> "85.5", 0.00001 -> "1e-05").
func FormatLPA(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
