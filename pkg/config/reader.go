package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Source supplies the configuration file's lines sequentially and tracks
// the current position for error reporting.
type Source struct {
	lines []string
	pos   int
}

// NewSource builds a Source from decoded configuration text.
func NewSource(text string) *Source {
	return &Source{lines: strings.Split(text, "\n")}
}

// ReadFile loads and decodes a configuration dump. The file is decoded as
// UTF-8 when valid and as ISO 8859-1 otherwise; exported dumps do not
// declare their encoding reliably.
func ReadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	text, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return NewSource(text), nil
}

// Decode converts raw dump bytes to text, falling back to the legacy
// single-byte encoding when the data is not valid UTF-8.
func Decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Next returns the next raw line. ok is false once the input is exhausted.
func (s *Source) Next() (line string, ok bool) {
	if s.pos >= len(s.lines) {
		return "", false
	}
	line = s.lines[s.pos]
	s.pos++
	return line, true
}

// Line returns the 1-based number of the line most recently returned by
// Next, or 0 before the first call.
func (s *Source) Line() int {
	return s.pos
}
