// Package crypto implements the WPA/WPA2/WPA3-transition key-derivation and
// MIC-verification pipeline: PBKDF2 -> PRF/KDF -> HMAC/CMAC. Every exported
// function here is pure — no I/O, no shared state, safe to call from any
// number of goroutines concurrently.
package crypto

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

const (
	pbkdf2Iterations = 4096
	pmkLen           = 32
	ptkLen           = 64
	kckLen           = 16
)

// PMK derives the Pairwise Master Key from a passphrase and SSID.
//
//	v in {1,2}: PBKDF2-HMAC-SHA1, 4096 iterations, dkLen=32.
//	v == 3:     PBKDF2-HMAC-SHA256, same parameters (WPA2-SHA256/transition;
//	            not true WPA3-SAE, see domain.KeyVersionSHA256).
func PMK(passphrase string, ssid []byte, v domain.KeyVersion) [32]byte {
	var key []byte
	switch v {
	case domain.KeyVersionSHA256:
		key = pbkdf2.Key([]byte(passphrase), ssid, pbkdf2Iterations, pmkLen, sha256.New)
	default:
		key = pbkdf2.Key([]byte(passphrase), ssid, pbkdf2Iterations, pmkLen, sha1.New)
	}
	var out [32]byte
	copy(out[:], key)
	return out
}

// ptkSeed builds the 76-byte seed shared by PRF-512 and KDF-SHA256:
// min(ap,cli) || max(ap,cli) || min(anonce,snonce) || max(anonce,snonce).
// Ties on the MAC pair are impossible in practice; ties on nonces are
// defined as "anonce first" per spec.
func ptkSeed(apMac, clientMac [6]byte, anonce, snonce [32]byte) []byte {
	seed := make([]byte, 0, 76)
	if bytes.Compare(apMac[:], clientMac[:]) <= 0 {
		seed = append(seed, apMac[:]...)
		seed = append(seed, clientMac[:]...)
	} else {
		seed = append(seed, clientMac[:]...)
		seed = append(seed, apMac[:]...)
	}
	if bytes.Compare(anonce[:], snonce[:]) <= 0 {
		seed = append(seed, anonce[:]...)
		seed = append(seed, snonce[:]...)
	} else {
		seed = append(seed, snonce[:]...)
		seed = append(seed, anonce[:]...)
	}
	return seed
}

var ptkLabel = []byte("Pairwise key expansion")

// PTK derives the 64-byte Pairwise Transient Key from the PMK, the two MAC
// addresses, and the two nonces. The first 16 bytes of the result are the
// KCK used to sign the MIC.
func PTK(pmk [32]byte, apMac, clientMac [6]byte, anonce, snonce [32]byte, v domain.KeyVersion) [64]byte {
	seed := ptkSeed(apMac, clientMac, anonce, snonce)
	var raw []byte
	if v == domain.KeyVersionSHA256 {
		raw = kdfSHA256(pmk[:], ptkLabel, seed, ptkLen*8)
	} else {
		raw = prf512(pmk[:], ptkLabel, seed)
	}
	var out [64]byte
	copy(out[:], raw)
	return out
}

// prf512 implements IEEE 802.11i's PRF-512: for counter in 0..3, compute
// HMAC-SHA1(key, label || 0x00 || seed || counter) and concatenate,
// truncating to 64 bytes.
func prf512(key, label, seed []byte) []byte {
	out := make([]byte, 0, 80)
	msg := make([]byte, 0, len(label)+1+len(seed)+1)
	for counter := byte(0); counter < 4; counter++ {
		msg = msg[:0]
		msg = append(msg, label...)
		msg = append(msg, 0x00)
		msg = append(msg, seed...)
		msg = append(msg, counter)

		h := hmac.New(sha1.New, key)
		h.Write(msg)
		out = append(out, h.Sum(nil)...)
	}
	return out[:ptkLen]
}

// kdfSHA256 implements the 802.11-2016 KDF-SHA256 used for v=3: for
// i=1..ceil(L/256), HMAC-SHA256(key, i_le16 || label || context || L_le16),
// concatenated and truncated to L/8 bytes.
func kdfSHA256(key, label, context []byte, lBits int) []byte {
	iterations := (lBits + 255) / 256
	out := make([]byte, 0, iterations*32)

	lenBytes := []byte{byte(lBits), byte(lBits >> 8)} // little-endian
	msg := make([]byte, 0, 2+len(label)+len(context)+2)
	for i := 1; i <= iterations; i++ {
		iBytes := []byte{byte(i), byte(i >> 8)} // little-endian

		msg = msg[:0]
		msg = append(msg, iBytes...)
		msg = append(msg, label...)
		msg = append(msg, context...)
		msg = append(msg, lenBytes...)

		h := hmac.New(sha256.New, key)
		h.Write(msg)
		out = append(out, h.Sum(nil)...)
	}
	return out[:lBits/8]
}

// MIC computes the 16-byte EAPOL-Key authenticator over frame using the
// algorithm selected by v:
//
//	v==1: HMAC-MD5(kck, frame), full output.
//	v==2: HMAC-SHA1(kck, frame), truncated to 16 bytes.
//	v==3: AES-128-CMAC(kck, frame), full output.
func MIC(kck []byte, frame []byte, v domain.KeyVersion) [16]byte {
	var out [16]byte
	switch v {
	case domain.KeyVersionTKIP:
		h := hmac.New(md5.New, kck)
		h.Write(frame)
		copy(out[:], h.Sum(nil))
	case domain.KeyVersionSHA256:
		sum := AESCMAC(kck[:kckLen], frame)
		copy(out[:], sum[:])
	default: // KeyVersionCCMP
		h := hmac.New(sha1.New, kck)
		h.Write(frame)
		copy(out[:], h.Sum(nil)[:16])
	}
	return out
}

// Verify derives the PMK and PTK for candidate against handshake's SSID,
// MACs and nonces, computes the MIC over the (already MIC-zeroed) EAPOL
// frame, and compares it to the captured MIC in constant time. It never
// returns an error: malformed handshakes are rejected by the caller before
// dispatch (see domain.Handshake.Validate).
func Verify(candidate string, hs *domain.Handshake) bool {
	pmk := PMK(candidate, hs.SSID, hs.KeyVersion)
	ptk := PTK(pmk, hs.APMac, hs.ClientMac, hs.ANonce, hs.SNonce, hs.KeyVersion)
	kck := ptk[:kckLen]
	mic := MIC(kck, hs.EAPOLFrame, hs.KeyVersion)
	return constantTimeEqual(mic[:], hs.MIC[:])
}

// constantTimeEqual reports whether a and b are equal, always performing
// exactly len(a) byte comparisons regardless of where they first differ.
// Both captured MICs and candidate-derived MICs are fixed at 16 bytes, so a
// length mismatch (which would itself leak timing) never occurs in
// practice; it is still rejected explicitly rather than risking a slice
// panic.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
