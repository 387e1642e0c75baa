package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

// Mode selects which candidate source a crack job reads from.
type Mode string

const (
	ModeWordlist Mode = "wordlist"
	ModeNumeric  Mode = "numeric"
	ModeCapture  Mode = "capture" // assemble a handshake from a live/offline interface, no cracking
)

// Config holds all application configuration.
type Config struct {
	Mode       Mode
	HandshakeFile string // path to a serialized handshake record (see internal/adapters/serialize)
	WordlistPath  string
	MinDigits     int
	MaxDigits     int
	Workers       int

	Interface  string
	PcapFile   string // replay this trace instead of opening Interface live
	Deauth     bool
	TargetBSSID string // required when Deauth is set: AP to provoke
	SSIDFilter string

	Addr     string
	DBPath   string
	MockMode bool
	Debug    bool
}

// Load parses command line flags and environment variables to populate
// Config. Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	mode := getEnv("WPACRACK_MODE", string(ModeWordlist))
	cfg.HandshakeFile = getEnv("WPACRACK_HANDSHAKE", "")
	cfg.WordlistPath = getEnv("WPACRACK_WORDLIST", "")
	cfg.MinDigits = int(getEnvFloat("WPACRACK_MIN_DIGITS", 8))
	cfg.MaxDigits = int(getEnvFloat("WPACRACK_MAX_DIGITS", 8))
	cfg.Workers = int(getEnvFloat("WPACRACK_WORKERS", 0))
	cfg.Interface = getEnv("WPACRACK_INTERFACE", "wlan0")
	cfg.Addr = getEnv("WPACRACK_ADDR", ":8080")
	cfg.DBPath = getEnv("WPACRACK_DB", getDefaultDBPath())
	cfg.MockMode = getEnvBool("WPACRACK_MOCK", false)

	flag.StringVar(&mode, "mode", mode, "crack mode: wordlist, numeric, or capture")
	flag.StringVar(&cfg.HandshakeFile, "handshake", cfg.HandshakeFile, "path to a serialized handshake record")
	flag.StringVar(&cfg.WordlistPath, "wordlist", cfg.WordlistPath, "path to a newline-delimited password dictionary")
	flag.IntVar(&cfg.MinDigits, "min-digits", cfg.MinDigits, "minimum digit length for numeric mode")
	flag.IntVar(&cfg.MaxDigits, "max-digits", cfg.MaxDigits, "maximum digit length for numeric mode")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of cracker worker goroutines (0 = NumCPU)")
	flag.StringVar(&cfg.Interface, "i", cfg.Interface, "network interface in monitor mode")
	flag.StringVar(&cfg.PcapFile, "pcap", "", "replay a pcap trace instead of a live interface")
	flag.BoolVar(&cfg.Deauth, "deauth", false, "actively provoke a handshake with deauthentication frames")
	flag.StringVar(&cfg.TargetBSSID, "bssid", "", "AP MAC address to target when -deauth is set")
	flag.StringVar(&cfg.SSIDFilter, "ssid", "", "only assemble handshakes for this SSID")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP progress server address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to SQLite job/handshake database")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "run without touching real network hardware")
	flag.BoolVar(&cfg.Debug, "debug", false, "enable verbose debug logging")

	flag.Parse()

	cfg.Mode = Mode(mode)
	return cfg
}

// Validate enforces the invariants Load cannot check at flag-parse time
// (cross-field constraints).
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeWordlist:
		if c.WordlistPath == "" {
			return fmt.Errorf("%w: -wordlist is required in wordlist mode", domain.ErrInputInvalid)
		}
	case ModeNumeric:
		if c.MinDigits < 1 || c.MaxDigits < c.MinDigits {
			return fmt.Errorf("%w: invalid digit range [%d,%d]", domain.ErrInputInvalid, c.MinDigits, c.MaxDigits)
		}
	case ModeCapture:
		if c.Deauth && c.TargetBSSID == "" {
			return fmt.Errorf("%w: -bssid is required when -deauth is set", domain.ErrInputInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", domain.ErrInputInvalid, c.Mode)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in the user's home
// directory, creating it if necessary.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "wpacrack.db"
	}

	dir := filepath.Join(home, ".wpacrack")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .wpacrack directory, using current dir: %v", err)
		return "wpacrack.db"
	}

	return filepath.Join(dir, "wpacrack.db")
}
