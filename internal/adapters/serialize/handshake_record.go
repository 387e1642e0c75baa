// Package serialize provides a lossless textual container for a
// domain.Handshake, so captured handshakes can be saved and replayed across
// process runs without a binary/PCAP round trip.
package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

// HandshakeRecord mirrors domain.Handshake field-for-field. Fixed-size byte
// arrays marshal as JSON arrays of integers (not base64) so the file stays
// human-diffable; MarshalJSON/UnmarshalJSON do the conversion explicitly
// rather than relying on json's default []byte-as-base64 behaviour, which
// would apply to EAPOLFrame and SSID but not to the fixed-size arrays.
type HandshakeRecord struct {
	SSID       []byte
	APMac      [6]byte
	ClientMac  [6]byte
	ANonce     [32]byte
	SNonce     [32]byte
	MIC        [16]byte
	EAPOLFrame []byte
	KeyVersion domain.KeyVersion
}

// wireRecord is the literal JSON shape: every byte slice/array becomes a
// JSON array of 0-255 integers.
type wireRecord struct {
	SSID       []int `json:"ssid"`
	APMac      []int `json:"ap_mac"`
	ClientMac  []int `json:"client_mac"`
	ANonce     []int `json:"anonce"`
	SNonce     []int `json:"snonce"`
	MIC        []int `json:"mic"`
	EAPOLFrame []int `json:"eapol_frame"`
	KeyVersion uint8 `json:"key_version"`
}

func bytesToInts(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func intsToBytes(in []int) ([]byte, error) {
	out := make([]byte, len(in))
	for i, v := range in {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: byte value %d out of range", domain.ErrInputInvalid, v)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// ToRecord builds a HandshakeRecord from a domain.Handshake.
func ToRecord(hs *domain.Handshake) HandshakeRecord {
	return HandshakeRecord{
		SSID:       hs.SSID,
		APMac:      hs.APMac,
		ClientMac:  hs.ClientMac,
		ANonce:     hs.ANonce,
		SNonce:     hs.SNonce,
		MIC:        hs.MIC,
		EAPOLFrame: hs.EAPOLFrame,
		KeyVersion: hs.KeyVersion,
	}
}

// ToHandshake converts back to the domain type.
func (r HandshakeRecord) ToHandshake() *domain.Handshake {
	return &domain.Handshake{
		SSID:       r.SSID,
		APMac:      r.APMac,
		ClientMac:  r.ClientMac,
		ANonce:     r.ANonce,
		SNonce:     r.SNonce,
		MIC:        r.MIC,
		EAPOLFrame: r.EAPOLFrame,
		KeyVersion: r.KeyVersion,
	}
}

func (r HandshakeRecord) MarshalJSON() ([]byte, error) {
	w := wireRecord{
		SSID:       bytesToInts(r.SSID),
		APMac:      bytesToInts(r.APMac[:]),
		ClientMac:  bytesToInts(r.ClientMac[:]),
		ANonce:     bytesToInts(r.ANonce[:]),
		SNonce:     bytesToInts(r.SNonce[:]),
		MIC:        bytesToInts(r.MIC[:]),
		EAPOLFrame: bytesToInts(r.EAPOLFrame),
		KeyVersion: uint8(r.KeyVersion),
	}
	return json.Marshal(w)
}

func (r *HandshakeRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: handshake record: %v", domain.ErrInputInvalid, err)
	}

	ssid, err := intsToBytes(w.SSID)
	if err != nil {
		return err
	}
	apMac, err := intsToBytes(w.APMac)
	if err != nil {
		return err
	}
	if len(apMac) != 6 {
		return fmt.Errorf("%w: ap_mac must be 6 bytes, got %d", domain.ErrInputInvalid, len(apMac))
	}
	clientMac, err := intsToBytes(w.ClientMac)
	if err != nil {
		return err
	}
	if len(clientMac) != 6 {
		return fmt.Errorf("%w: client_mac must be 6 bytes, got %d", domain.ErrInputInvalid, len(clientMac))
	}
	anonce, err := intsToBytes(w.ANonce)
	if err != nil {
		return err
	}
	if len(anonce) != 32 {
		return fmt.Errorf("%w: anonce must be 32 bytes, got %d", domain.ErrInputInvalid, len(anonce))
	}
	snonce, err := intsToBytes(w.SNonce)
	if err != nil {
		return err
	}
	if len(snonce) != 32 {
		return fmt.Errorf("%w: snonce must be 32 bytes, got %d", domain.ErrInputInvalid, len(snonce))
	}
	mic, err := intsToBytes(w.MIC)
	if err != nil {
		return err
	}
	if len(mic) != 16 {
		return fmt.Errorf("%w: mic must be 16 bytes, got %d", domain.ErrInputInvalid, len(mic))
	}
	eapol, err := intsToBytes(w.EAPOLFrame)
	if err != nil {
		return err
	}

	r.SSID = ssid
	copy(r.APMac[:], apMac)
	copy(r.ClientMac[:], clientMac)
	copy(r.ANonce[:], anonce)
	copy(r.SNonce[:], snonce)
	copy(r.MIC[:], mic)
	r.EAPOLFrame = eapol
	r.KeyVersion = domain.KeyVersion(w.KeyVersion)
	return nil
}
