package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"a@b.co", true},
		{"user@localhost", true}, // single-label domains are fine in dev

		// Invalid emails - empty/whitespace
		{"", false},
		{"   ", false},

		// Invalid emails - missing parts
		{"user", false},
		{"user@", false},
		{"@example.com", false},

		// Invalid emails - bad format
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},

		// Display names are rejected
		{"User Name <user@example.com>", false},

		// Whitespace anywhere
		{"user @example.com", false},
		{"user@ example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice", true},
		{"alice.smith_2", true},
		{"al", false},
		{"alice smith", false},
		{"", false},
		{"alice@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsValidUsername(tt.in); got != tt.want {
				t.Errorf("IsValidUsername(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	if IsValidPassword("short") {
		t.Error("expected short password to be rejected")
	}
	if !IsValidPassword("long-enough") {
		t.Error("expected 11-char password to be accepted")
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"5551234567", true},
		{"+15551234567", true},
		{"555123", false},
		{"555-123-4567", false}, // not normalized
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsValidPhone(tt.in); got != tt.want {
				t.Errorf("IsValidPhone(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidSSN(t *testing.T) {
	if !IsValidSSN("123-45-6789") {
		t.Error("expected formatted SSN to be valid")
	}
	if IsValidSSN("123456789") {
		t.Error("expected unformatted SSN to be invalid")
	}
}

func TestDates(t *testing.T) {
	if !IsValidDate("2024-02-29") {
		t.Error("expected leap day to be valid")
	}
	if IsValidDate("2023-02-29") {
		t.Error("expected non-leap Feb 29 to be invalid")
	}
	if IsValidDate("") {
		t.Error("expected empty date to be invalid")
	}
	if !IsValidRange("2024-01-01", "2024-01-01") {
		t.Error("expected same-day range to be valid")
	}
	if IsValidRange("2024-02-01", "2024-01-01") {
		t.Error("expected reversed range to be invalid")
	}
}
