package ie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildIEs(entries ...[]byte) []byte {
	var out []byte
	for _, e := range entries {
		out = append(out, e...)
	}
	return out
}

func tlv(id byte, data ...byte) []byte {
	return append([]byte{id, byte(len(data))}, data...)
}

func TestIterateIEs(t *testing.T) {
	data := buildIEs(tlv(0, 'h', 'i'), tlv(3, 6))

	var seen []int
	IterateIEs(data, func(id int, val []byte) {
		seen = append(seen, id)
	})
	assert.Equal(t, []int{0, 3}, seen)
}

func TestIterateIEs_StopsOnMalformedLength(t *testing.T) {
	// length byte claims 10 bytes follow but only 1 is present
	data := []byte{0, 10, 'x'}

	var calls int
	IterateIEs(data, func(id int, val []byte) { calls++ })
	assert.Equal(t, 0, calls)
}

func TestFindIE(t *testing.T) {
	data := buildIEs(tlv(0, 'm', 'y', 's', 's', 'i', 'd'), tlv(3, 6))
	assert.Equal(t, []byte("myssid"), FindIE(data, 0))
	assert.Equal(t, []byte{6}, FindIE(data, 3))
	assert.Nil(t, FindIE(data, 221))
}

func TestParseSSID(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"normal", buildIEs(tlv(0, 'h', 'o', 'm', 'e')), "home"},
		{"hidden zero-length", buildIEs(tlv(0)), "<HIDDEN>"},
		{"hidden null byte", buildIEs(tlv(0, 0x00)), "<HIDDEN>"},
		{"no ssid ie present", buildIEs(tlv(3, 6)), ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ParseSSID(c.data))
		})
	}
}
