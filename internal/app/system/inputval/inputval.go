// Package inputval holds the field checks shared by the portal's forms.
// The backend validates again; these checks only catch obvious mistakes
// before a round trip.
package inputval

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the format of date inputs (<input type="date">).
const DateLayout = "2006-01-02"

// MinPasswordLen is the shortest password the registration form accepts.
const MinPasswordLen = 8

var (
	usernameRE = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)
	ssnRE      = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
)

// IsValidEmail reports whether s is a bare addr-spec ("user@host"). Display
// names, whitespace and dot-atom violations are rejected.
func IsValidEmail(s string) bool {
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	return dotAtomOK(local) && dotAtomOK(domain)
}

func dotAtomOK(s string) bool {
	return s != "" &&
		!strings.HasPrefix(s, ".") &&
		!strings.HasSuffix(s, ".") &&
		!strings.Contains(s, "..")
}

// IsValidUsername allows 3 to 32 letters, digits, dots, dashes and
// underscores.
func IsValidUsername(s string) bool {
	return usernameRE.MatchString(s)
}

// IsValidPassword enforces the minimum length only; the backend owns the
// real policy.
func IsValidPassword(s string) bool {
	return len(s) >= MinPasswordLen
}

// IsValidPhone expects a normalized phone number (see normalize.Phone)
// with 10 to 15 digits.
func IsValidPhone(s string) bool {
	digits := strings.TrimPrefix(s, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsValidSSN expects a normalized SSN (see normalize.SSN).
func IsValidSSN(s string) bool {
	return ssnRE.MatchString(s)
}

// ParseDate parses a date input. Empty input is reported as not ok.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsValidDate reports whether s is a date input value.
func IsValidDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// IsValidRange reports whether both dates parse and start is not after end.
func IsValidRange(start, end string) bool {
	s, ok1 := ParseDate(start)
	e, ok2 := ParseDate(end)
	return ok1 && ok2 && !s.After(e)
}
