// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength matches the width of the slug columns.
const MaxLength = 100

// Fallback is used when a name has no usable characters.
const Fallback = "cancer-type"

// maxAttempts bounds the numeric-suffix search in Unique.
const maxAttempts = 10000

var ErrExhausted = errors.New("slug: no free suffix found")

// Make lowercases name, strips diacritics and collapses every run of
// characters outside [a-z0-9] into a single '-'. Names with nothing left
// after folding yield Fallback.
func Make(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	out := truncate(b.String(), MaxLength)
	if out == "" {
		return Fallback
	}
	return out
}

// Unique returns base if it is free, otherwise base-2, base-3, ... The
// taken callback reports whether a candidate is already in use.
func Unique(base string, taken func(candidate string) (bool, error)) (string, error) {
	for n := 1; n <= maxAttempts; n++ {
		candidate := base
		if n > 1 {
			suffix := "-" + strconv.Itoa(n)
			candidate = truncate(base, MaxLength-len(suffix)) + suffix
		}

		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}
