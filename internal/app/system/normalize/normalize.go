// Package normalize trims and canonicalizes form and query input before
// it is validated or sent to the backend.
package normalize

import (
	"strings"
	"unicode"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person's name and collapses inner whitespace. Case is kept.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Username trims a login name. Usernames are case-sensitive on the backend.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Phone keeps the digits of a phone number and a leading "+".
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SSN reduces a social security number to its nine digits, formatted
// "123-45-6789". Input that does not hold exactly nine digits is returned
// trimmed but otherwise unchanged so validation can reject it.
func SSN(s string) string {
	s = strings.TrimSpace(s)
	digits := make([]rune, 0, 9)
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) != 9 {
		return s
	}
	d := string(digits)
	return d[:3] + "-" + d[3:5] + "-" + d[5:]
}

// Status maps a status filter to its canonical spelling. "all" and empty
// mean no filter.
func Status(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
