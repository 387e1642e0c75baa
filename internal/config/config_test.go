package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"wordlist needs path", Config{Mode: ModeWordlist}, true},
		{"wordlist ok", Config{Mode: ModeWordlist, WordlistPath: "rockyou.txt"}, false},
		{"numeric needs valid range", Config{Mode: ModeNumeric, MinDigits: 8, MaxDigits: 4}, true},
		{"numeric ok", Config{Mode: ModeNumeric, MinDigits: 8, MaxDigits: 10}, false},
		{"capture needs nothing", Config{Mode: ModeCapture}, false},
		{"capture deauth needs bssid", Config{Mode: ModeCapture, Deauth: true}, true},
		{"capture deauth with bssid ok", Config{Mode: ModeCapture, Deauth: true, TargetBSSID: "00:11:22:33:44:55"}, false},
		{"unknown mode", Config{Mode: "bogus"}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInputInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
