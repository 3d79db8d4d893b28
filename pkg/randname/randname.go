// Package randname generates unique alphanumeric names, replacing the dead
// uniqrand stub with the one thing its callers actually need: unique
// temp-file names for m4's maketemp built-in.
package randname

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoPlaceholder is returned by MakeTemp when template has no trailing
// run of 'X' bytes to substitute.
var ErrNoPlaceholder = errors.New("randname: template has no trailing X placeholder")

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generate returns a random alphanumeric string of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("randname: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = alphanumeric[int(b)%len(alphanumeric)]
	}

	return string(out), nil
}

const maxAttempts = 100

// MakeTemp mimics mkstemp: template's trailing run of 'X' bytes is replaced
// with random alphanumerics, an empty file is created exclusively at the
// resulting path, and the path is returned. It retries on collision.
func MakeTemp(template string) (string, error) {
	end := len(template)
	start := end

	for start > 0 && template[start-1] == 'X' {
		start--
	}

	if start == end {
		return "", ErrNoPlaceholder
	}

	prefix := template[:start]
	width := end - start

	for attempt := 0; attempt < maxAttempts; attempt++ {
		suffix, err := Generate(width)
		if err != nil {
			return "", err
		}

		path := prefix + suffix

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err == nil {
			if closeErr := f.Close(); closeErr != nil {
				return "", fmt.Errorf("randname: close %q: %w", path, closeErr)
			}

			return path, nil
		}

		if !os.IsExist(err) {
			return "", fmt.Errorf("randname: create %q: %w", path, err)
		}
	}

	return "", fmt.Errorf("randname: exhausted %d attempts for template %q", maxAttempts, template)
}

// HasPlaceholder reports whether s ends with at least one 'X'.
func HasPlaceholder(s string) bool {
	return strings.HasSuffix(s, "X")
}
