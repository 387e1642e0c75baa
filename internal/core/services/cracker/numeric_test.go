package cracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericSource_AscendingWithinLength(t *testing.T) {
	src, err := newNumericSource(2, 2)
	require.NoError(t, err)

	var got []string
	for {
		c, ok, err := src.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, c)
	}

	require.Len(t, got, 100)
	assert.Equal(t, "00", got[0])
	assert.Equal(t, "01", got[1])
	assert.Equal(t, "99", got[99])
}

func TestNumericSource_RollsOverAcrossLengths(t *testing.T) {
	src, err := newNumericSource(1, 2)
	require.NoError(t, err)

	var got []string
	for {
		c, ok, err := src.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, c)
	}

	// 10 one-digit candidates (0-9) followed by 100 two-digit (00-99).
	require.Len(t, got, 110)
	assert.Equal(t, "0", got[0])
	assert.Equal(t, "9", got[9])
	assert.Equal(t, "00", got[10])
	assert.Equal(t, "99", got[109])
}

func TestNumericSource_RejectsInvalidRanges(t *testing.T) {
	_, err := newNumericSource(0, 4)
	assert.Error(t, err)

	_, err = newNumericSource(5, 3)
	assert.Error(t, err)

	_, err = newNumericSource(1, MaxNumericDigits+1)
	assert.Error(t, err)
}

func TestNumericSource_SpaceSizeMatchesEnumeration(t *testing.T) {
	src, err := newNumericSource(1, 3)
	require.NoError(t, err)

	var count uint64
	for {
		_, ok, err := src.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}

	assert.Equal(t, numericSpaceSize(1, 3), count)
}

func TestPow10Table_ExactAtMaxDigits(t *testing.T) {
	// 10^19 must be exact; a float64 round-trip would have corrupted this.
	assert.Equal(t, uint64(10000000000000000000), pow10(19))
}
