package domain

import (
	"bytes"
	"errors"
	"fmt"
)

// KeyVersion selects the PMK/PTK/MIC algorithm family used by a handshake,
// taken directly from the EAPOL-Key Key Information Key Descriptor Version
// bits (IEEE 802.11i).
type KeyVersion uint8

const (
	// KeyVersionTKIP is legacy WPA: PBKDF2-HMAC-SHA1, HMAC-MD5 MIC.
	KeyVersionTKIP KeyVersion = 1
	// KeyVersionCCMP is WPA2: PBKDF2-HMAC-SHA1, HMAC-SHA1 MIC (truncated).
	KeyVersionCCMP KeyVersion = 2
	// KeyVersionSHA256 is WPA2-SHA256 / WPA3-transition: PBKDF2-HMAC-SHA256,
	// AES-128-CMAC MIC. Real WPA3-SAE derives its PMK differently; this
	// value only covers the transition/CCMP-256 case.
	KeyVersionSHA256 KeyVersion = 3
)

func (v KeyVersion) String() string {
	switch v {
	case KeyVersionTKIP:
		return "WPA-TKIP"
	case KeyVersionCCMP:
		return "WPA2-CCMP"
	case KeyVersionSHA256:
		return "WPA2-SHA256"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

func (v KeyVersion) valid() bool {
	return v == KeyVersionTKIP || v == KeyVersionCCMP || v == KeyVersionSHA256
}

// Byte lengths mandated by IEEE 802.11i for the handshake record fields.
const (
	MinSSIDLen  = 1
	MaxSSIDLen  = 32
	MACLen      = 6
	NonceLen    = 32
	MICLen      = 16
	MinPassLen  = 8
	MaxPassLen  = 63
)

// Handshake is the canonical, read-only artefact bridging the handshake
// assembler and the cracker engine.
type Handshake struct {
	SSID       []byte
	APMac      [MACLen]byte
	ClientMac  [MACLen]byte
	ANonce     [NonceLen]byte
	SNonce     [NonceLen]byte
	MIC        [MICLen]byte
	EAPOLFrame []byte // raw EAPOL-Key body, MIC field zeroed
	KeyVersion KeyVersion
}

// Validate enforces the §3 invariants of the handshake record. A non-nil
// error always wraps ErrInputInvalid.
func (h *Handshake) Validate() error {
	if l := len(h.SSID); l < MinSSIDLen || l > MaxSSIDLen {
		return fmt.Errorf("%w: ssid length %d out of range [%d,%d]", ErrInputInvalid, l, MinSSIDLen, MaxSSIDLen)
	}
	if len(h.EAPOLFrame) == 0 {
		return fmt.Errorf("%w: eapol_frame is empty", ErrInputInvalid)
	}
	if !h.KeyVersion.valid() {
		return fmt.Errorf("%w: key_version %d not in {1,2,3}", ErrInputInvalid, uint8(h.KeyVersion))
	}
	return nil
}

// ZeroMIC returns a copy of frame with the 16 bytes starting at micOffset
// overwritten with zeros, as required before storing EAPOLFrame.
func ZeroMIC(frame []byte, micOffset int) ([]byte, error) {
	if micOffset < 0 || micOffset+MICLen > len(frame) {
		return nil, fmt.Errorf("%w: mic offset %d out of bounds for frame of length %d", ErrInputInvalid, micOffset, len(frame))
	}
	out := make([]byte, len(frame))
	copy(out, frame)
	for i := 0; i < MICLen; i++ {
		out[micOffset+i] = 0
	}
	return out, nil
}

// MICIsZero reports whether the stored MIC is all-zero, which marks a
// handshake message whose MIC was never computed by the supplicant/AP (and
// therefore cannot be used to validate a candidate password).
func (h *Handshake) MICIsZero() bool {
	return bytes.Equal(h.MIC[:], make([]byte, MICLen))
}

// ErrInputInvalid marks a caller error: a malformed handshake, an
// out-of-bounds numeric range, or an unreadable wordlist. Never retried.
var ErrInputInvalid = errors.New("input invalid")
