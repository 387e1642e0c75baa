// Package wordlist adapts a line-delimited dictionary file to the
// cracker.Source boundary.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

// FileSource streams candidate passphrases from a text file, one per line.
// Blank lines are skipped; length filtering against the WPA passphrase
// bounds happens downstream in the cracker engine, not here, so the same
// source can be reused for non-passphrase candidate lists in tests.
type FileSource struct {
	f       *os.File
	scanner *bufio.Scanner
}

// Open opens path for sequential line-by-line reading. The returned source
// owns the file handle; callers must call Close when done.
func Open(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open wordlist %s: %v", domain.ErrInputInvalid, path, err)
	}
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &FileSource{f: f, scanner: s}, nil
}

// Next returns the next non-blank line, or ok=false at end of file.
func (s *FileSource) Next() (string, bool, error) {
	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		return line, true, nil
	}
	if err := s.scanner.Err(); err != nil && err != io.EOF {
		return "", false, fmt.Errorf("%w: reading wordlist: %v", domain.ErrInputInvalid, err)
	}
	return "", false, nil
}

// Close releases the underlying file handle.
func (s *FileSource) Close() error {
	return s.f.Close()
}
