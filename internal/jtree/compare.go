package jtree

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Compare orders two values and returns -1, 0, or 1, or an error when the
// pair is incomparable.
//
// There is exactly one coercion ladder, applied in order:
//  1. Both numbers: numeric comparison.
//  2. One number, one string: the string must parse as a number, then
//     numeric comparison.
//  3. Both strings parsing as RFC 3339 timestamps: chronological.
//  4. Both strings: lexical (byte order).
//  5. Both booleans: false < true.
//
// Nulls, arrays, and objects have no ordering; comparing them is an error.
// Use Equal for deep equality across all tags.
func Compare(a, b Value) (int, error) {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}

	if an, aOK := a.(Number); aOK {
		if bn, bOK := b.(Number); bOK {
			return compareFloats(float64(an), float64(bn)), nil
		}
		if bs, bOK := b.(String); bOK {
			f, err := parseNumericString(string(bs))
			if err != nil {
				return 0, fmt.Errorf("compare number with non-numeric string %q", string(bs))
			}
			return compareFloats(float64(an), f), nil
		}
		return 0, incomparable(a, b)
	}

	if as, aOK := a.(String); aOK {
		if bn, bOK := b.(Number); bOK {
			f, err := parseNumericString(string(as))
			if err != nil {
				return 0, fmt.Errorf("compare non-numeric string %q with number", string(as))
			}
			return compareFloats(f, float64(bn)), nil
		}
		if bs, bOK := b.(String); bOK {
			// Numeric strings compare numerically, timestamps
			// chronologically, everything else lexically.
			if af, aErr := parseNumericString(string(as)); aErr == nil {
				if bf, bErr := parseNumericString(string(bs)); bErr == nil {
					return compareFloats(af, bf), nil
				}
			}
			if at, aErr := time.Parse(time.RFC3339, string(as)); aErr == nil {
				if bt, bErr := time.Parse(time.RFC3339, string(bs)); bErr == nil {
					return at.Compare(bt), nil
				}
			}
			return strings.Compare(string(as), string(bs)), nil
		}
		return 0, incomparable(a, b)
	}

	if ab, aOK := a.(Bool); aOK {
		if bb, bOK := b.(Bool); bOK {
			switch {
			case bool(ab) == bool(bb):
				return 0, nil
			case bool(ab):
				return 1, nil
			default:
				return -1, nil
			}
		}
		return 0, incomparable(a, b)
	}

	return 0, incomparable(a, b)
}

// Equal reports deep equality. Numbers and numeric strings that represent
// the same quantity are equal (the Compare ladder); arrays and objects are
// equal when their elements are, with object key ORDER ignored.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}

	if _, aOK := a.(Null); aOK {
		_, bOK := b.(Null)
		return bOK
	}

	if aa, aOK := a.(Array); aOK {
		ba, bOK := b.(Array)
		if !bOK || len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	}

	if ao, aOK := a.(Object); aOK {
		bo, bOK := b.(Object)
		if !bOK || ao.Len() != bo.Len() {
			return false
		}
		equal := true
		ao.Range(func(k string, av Value) bool {
			bv, ok := bo.Get(k)
			if !ok || !Equal(av, bv) {
				equal = false
				return false
			}
			return true
		})
		return equal
	}

	cmp, err := Compare(a, b)
	return err == nil && cmp == 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func parseNumericString(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func incomparable(a, b Value) error {
	return fmt.Errorf("values %s and %s have no ordering", describe(a), describe(b))
}
