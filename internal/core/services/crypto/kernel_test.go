package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// Known-answer vectors published for IEEE 802.11i PBKDF2 PMK derivation.
func TestPMK_KnownAnswer(t *testing.T) {
	cases := []struct {
		name       string
		passphrase string
		ssid       string
		want       string
	}{
		{
			name:       "password/IEEE",
			passphrase: "password",
			ssid:       "IEEE",
			want:       "f42c6fc52df0ebef9ebb4b90b38a5f902e83fe1b135a70e23aed762e9710a12e",
		},
		{
			name:       "IEEE8021X/IEEE",
			passphrase: "IEEE8021X",
			ssid:       "IEEE",
			want:       "adcbe2b399be3d74d8a6d6f6bf4f5bfc18d57c53a3c4d5b0c3ffb7b7e9a107d5",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			want := hexBytes(t, c.want)
			got := PMK(c.passphrase, []byte(c.ssid), domain.KeyVersionCCMP)
			assert.Equal(t, want, got[:])
		})
	}
}

func TestPMK_Deterministic(t *testing.T) {
	a := PMK("correcthorsebatterystaple", []byte("TestNetwork"), domain.KeyVersionCCMP)
	b := PMK("correcthorsebatterystaple", []byte("TestNetwork"), domain.KeyVersionCCMP)
	assert.Equal(t, a, b)
}

func TestPMK_SHA256Variant_DiffersFromSHA1(t *testing.T) {
	a := PMK("password", []byte("IEEE"), domain.KeyVersionCCMP)
	b := PMK("password", []byte("IEEE"), domain.KeyVersionSHA256)
	assert.NotEqual(t, a, b)
}

func buildSyntheticHandshake(t *testing.T, v domain.KeyVersion) (*domain.Handshake, string) {
	t.Helper()
	hs := &domain.Handshake{
		SSID:       []byte("TestNetwork"),
		KeyVersion: v,
	}
	copy(hs.APMac[:], hexBytes(t, "001122334455"))
	copy(hs.ClientMac[:], hexBytes(t, "aabbccddeeff"))
	for i := range hs.ANonce {
		hs.ANonce[i] = 0x01
	}
	for i := range hs.SNonce {
		hs.SNonce[i] = 0x02
	}
	hs.EAPOLFrame = make([]byte, 121)
	for i := range hs.EAPOLFrame {
		hs.EAPOLFrame[i] = 0x02
	}

	password := "12345678"
	pmk := PMK(password, hs.SSID, v)
	ptk := PTK(pmk, hs.APMac, hs.ClientMac, hs.ANonce, hs.SNonce, v)
	mic := MIC(ptk[:16], hs.EAPOLFrame, v)
	hs.MIC = mic
	return hs, password
}

func TestVerify_CorrectAndWrongPassword(t *testing.T) {
	for _, v := range []domain.KeyVersion{domain.KeyVersionTKIP, domain.KeyVersionCCMP, domain.KeyVersionSHA256} {
		hs, password := buildSyntheticHandshake(t, v)
		assert.True(t, Verify(password, hs), "version %v should verify correct password", v)
		assert.False(t, Verify("wrongpassword", hs), "version %v should reject wrong password", v)
	}
}

func TestPTK_SeedOrderingIsMACAndNonceAgnostic(t *testing.T) {
	// Swapping AP/client MAC and nonce arguments must not change the PTK,
	// since the seed construction canonicalises ordering internally.
	pmk := PMK("password", []byte("IEEE"), domain.KeyVersionCCMP)
	var ap, cli [6]byte
	copy(ap[:], hexBytes(t, "001122334455"))
	copy(cli[:], hexBytes(t, "aabbccddeeff"))
	var a, s [32]byte
	for i := range a {
		a[i] = 0x01
	}
	for i := range s {
		s[i] = 0x02
	}

	p1 := PTK(pmk, ap, cli, a, s, domain.KeyVersionCCMP)
	p2 := PTK(pmk, cli, ap, s, a, domain.KeyVersionCCMP)
	assert.Equal(t, p1, p2)
}

func TestMIC_AlgorithmSelection(t *testing.T) {
	kck := make([]byte, 16)
	for i := range kck {
		kck[i] = byte(i)
	}
	frame := []byte("eapol-key-frame-body-with-mic-zeroed")

	md5MIC := MIC(kck, frame, domain.KeyVersionTKIP)
	sha1MIC := MIC(kck, frame, domain.KeyVersionCCMP)
	cmacMIC := MIC(kck, frame, domain.KeyVersionSHA256)

	assert.NotEqual(t, md5MIC, sha1MIC)
	assert.NotEqual(t, sha1MIC, cmacMIC)
	assert.NotEqual(t, md5MIC, cmacMIC)
}

func TestConstantTimeEqual(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 2, 3, 4}
	c := []byte{1, 2, 3, 5}
	assert.True(t, constantTimeEqual(a, b))
	assert.False(t, constantTimeEqual(a, c))
	assert.False(t, constantTimeEqual(a, []byte{1, 2, 3}))
}
