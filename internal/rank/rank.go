package rank

import "math"

// Rank is the tier label derived from a card's power value.
type Rank string

const (
	E  Rank = "E"
	D  Rank = "D"
	C  Rank = "C"
	B  Rank = "B"
	A  Rank = "A"
	S  Rank = "S"
	EX Rank = "EX"
)

// FromValue maps a base power value to its tier. Callers may not have a
// value yet, so NaN and infinities classify as 0 rather than failing.
func FromValue(v float64) Rank {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	switch {
	case v >= 999:
		return EX
	case v >= 96:
		return S
	case v >= 86:
		return A
	case v >= 61:
		return B
	case v >= 31:
		return C
	case v >= 11:
		return D
	default:
		return E
	}
}
