package nerfconf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// keyRegex matches a legal configuration key: an identifier as accepted by
// the external trainer's argument parser.
var keyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseError describes a malformed line in a configuration file.
type ParseError struct {
	Name string
	Line int
	Text string
	Msg  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.Name, e.Line, e.Msg, e.Text)
}

// ParseFile reads and parses a configuration file from disk.
func ParseFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads one configuration record. Each non-blank line must be either a
// `key = value` assignment or a bare key, which is shorthand for `key = True`.
// Duplicate keys are last-write-wins.
func Parse(r io.Reader, name string) (*Record, error) {
	rec := New(name)
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		key, rawVal, hasValue := strings.Cut(trimmed, "=")
		key = strings.TrimSpace(key)
		if !keyRegex.MatchString(key) {
			return nil, &ParseError{Name: name, Line: lineNo, Text: trimmed, Msg: "invalid configuration line"}
		}

		if !hasValue {
			// Bare flag line: store_true compatibility.
			rec.setRaw(key, cty.True, "")
			continue
		}

		rawVal = strings.TrimSpace(rawVal)
		rec.setRaw(key, inferValue(rawVal), rawVal)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return rec, nil
}

// ParseValue types a single raw value string the way a config file line
// would, for callers that inject values from outside a file (overrides).
func ParseValue(raw string) cty.Value {
	return inferValue(strings.TrimSpace(raw))
}

// inferValue types a raw value string as bool, number, or string. The file
// format carries no type declarations, so the narrowest plausible type wins;
// the profile layer converts further when a schema is known.
func inferValue(raw string) cty.Value {
	if raw == "" {
		return cty.StringVal("")
	}

	switch strings.ToLower(raw) {
	case "true":
		return cty.True
	case "false":
		return cty.False
	}

	if looksNumeric(raw) {
		if num, err := cty.ParseNumberVal(raw); err == nil {
			return num
		}
		// Values like "7scenes" start with a digit but are names, not numbers.
	}

	return cty.StringVal(raw)
}

// looksNumeric is a cheap pre-check so that paths like "./data/llff" are not
// handed to the number parser.
func looksNumeric(s string) bool {
	c := s[0]
	if c == '+' || c == '-' {
		if len(s) == 1 {
			return false
		}
		c = s[1]
	}
	return c >= '0' && c <= '9' || c == '.'
}
