package cracker

import (
	"fmt"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

// MaxNumericDigits is the largest digit-length this engine will enumerate;
// 10^19 still fits in a uint64 but 10^20 does not, so longer lengths are
// rejected up front (spec §6).
const MaxNumericDigits = 19

// numericSource enumerates all L-digit numeric strings (zero-padded, 0
// included) for L in [minDigits, maxDigits], ascending numeric order within
// a length and ascending length across lengths (spec §9 Open Question i:
// enumeration starts at 0, not 10^(L-1), to cover passphrases like
// "00000000").
type numericSource struct {
	minDigits, maxDigits int
	length               int // current digit length
	n, limit             uint64
}

func newNumericSource(minDigits, maxDigits int) (*numericSource, error) {
	if minDigits < 1 {
		return nil, fmt.Errorf("%w: min_digits must be >= 1, got %d", domain.ErrInputInvalid, minDigits)
	}
	if maxDigits < minDigits {
		return nil, fmt.Errorf("%w: max_digits (%d) must be >= min_digits (%d)", domain.ErrInputInvalid, maxDigits, minDigits)
	}
	if maxDigits > MaxNumericDigits {
		return nil, fmt.Errorf("%w: max_digits (%d) exceeds the 64-bit enumeration limit of %d", domain.ErrInputInvalid, maxDigits, MaxNumericDigits)
	}

	s := &numericSource{minDigits: minDigits, maxDigits: maxDigits, length: minDigits}
	s.limit = pow10(minDigits)
	return s, nil
}

// pow10Table holds exact 10^n for n in [0,19] — the largest that still fits
// in a uint64 (10^19 < 2^64-1). float64 exponentiation loses precision well
// before that, so an exact integer table is used instead.
var pow10Table = [MaxNumericDigits + 1]uint64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000,
	10000000000, 100000000000, 1000000000000, 10000000000000, 100000000000000,
	1000000000000000, 10000000000000000, 100000000000000000, 1000000000000000000,
	10000000000000000000,
}

func pow10(n int) uint64 {
	return pow10Table[n]
}

// Next returns the next candidate in ascending numeric order, rolling over
// to the next digit length once the current one is exhausted.
func (s *numericSource) Next() (string, bool, error) {
	for s.length <= s.maxDigits {
		if s.n < s.limit {
			candidate := fmt.Sprintf("%0*d", s.length, s.n)
			s.n++
			return candidate, true, nil
		}
		s.length++
		s.n = 0
		if s.length <= s.maxDigits {
			s.limit = pow10(s.length)
		}
	}
	return "", false, nil
}

// numericSpaceSize returns the total number of candidates across [min,max] digits,
// used only by tests to assert full-coverage enumeration (spec §8.3).
func numericSpaceSize(minDigits, maxDigits int) uint64 {
	var total uint64
	for l := minDigits; l <= maxDigits; l++ {
		total += pow10(l)
	}
	return total
}
