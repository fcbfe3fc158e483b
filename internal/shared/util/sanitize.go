package util

import (
	"errors"
	"strings"
)

const maxFileNameLen = 100

// ErrInvalidFileName is returned when nothing usable is left after sanitizing.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName reduces name to a URL- and header-safe token. Path
// components are dropped and anything outside [A-Za-z0-9._-] becomes '_'.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if len(out) > maxFileNameLen {
		out = out[len(out)-maxFileNameLen:]
	}
	if out == "" || strings.Contains(out, "..") {
		return "", ErrInvalidFileName
	}
	return out, nil
}
