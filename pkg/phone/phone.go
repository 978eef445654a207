// Package phone normalizes heterogeneous phone number representations into
// the canonical WhatsApp wire form "whatsapp:+<countrycode><number>".
package phone

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidNumber is returned when no normalization rule matches the input.
var ErrInvalidNumber = errors.New("invalid phone number")

const prefix = "whatsapp:"

var (
	digitsOnly      = regexp.MustCompile(`^\d+$`)
	colombianFull   = regexp.MustCompile(`^57\d{10}$`)
	colombianLocal  = regexp.MustCompile(`^\d{10}$`)
	strippableChars = strings.NewReplacer(" ", "", "\t", "", "-", "", "(", "", ")", "")
)

// Normalize converts an arbitrary phone representation into canonical form.
// Rules are tried in order, first match wins:
//
//  1. Already "whatsapp:" prefixed: the remainder must be +digits or bare
//     digits (bare digits get "+" prepended).
//  2. Leading "+": prefixed with "whatsapp:" verbatim.
//  3. "57" followed by 10 digits: prefixed with "whatsapp:+".
//  4. Exactly 10 digits: assumed Colombian, "whatsapp:+57" prepended.
//
// Anything else fails with ErrInvalidNumber. Normalize is idempotent.
func Normalize(raw string) (string, error) {
	v := strippableChars.Replace(strings.TrimSpace(raw))
	if v == "" {
		return "", ErrInvalidNumber
	}

	if strings.HasPrefix(v, prefix) {
		rest := strings.TrimSpace(strings.TrimPrefix(v, prefix))
		if strings.HasPrefix(rest, "+") && digitsOnly.MatchString(rest[1:]) {
			return prefix + rest, nil
		}
		if digitsOnly.MatchString(rest) {
			return prefix + "+" + rest, nil
		}
		return "", ErrInvalidNumber
	}

	if strings.HasPrefix(v, "+") {
		if !digitsOnly.MatchString(v[1:]) {
			return "", ErrInvalidNumber
		}
		return prefix + v, nil
	}

	if colombianFull.MatchString(v) {
		return prefix + "+" + v, nil
	}

	if colombianLocal.MatchString(v) {
		return prefix + "+57" + v, nil
	}

	return "", ErrInvalidNumber
}

// Canonical returns the normalized form of raw, or the trimmed raw value
// unchanged when it cannot be normalized. Used when comparing addresses that
// may include legacy data.
func Canonical(raw string) string {
	if n, err := Normalize(raw); err == nil {
		return n
	}
	return strings.TrimSpace(raw)
}
