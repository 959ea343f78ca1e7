package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
		{"Mixed.Case@Domain.ORG", "mixed.case@domain.org"},
		{"José@Example.com", "josé@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Samantha Cruz", "Samantha Cruz"},
		{"  Samantha Cruz  ", "Samantha Cruz"},
		{"Samantha   Cruz", "Samantha Cruz"},
		{"", ""},
		{"   ", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"}, // Name preserves case
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Broker", "Broker"},
		{"broker", "Broker"},
		{"  BROKER ", "Broker"},
		{"Salesperson", "Salesperson"},
		{"salesPerson", "Salesperson"},
		{"Salespérson", "Salesperson"},
		{"BRÓKER", "Broker"},
		{"agent", "agent"}, // unknown values are left for the caller to reject
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Position(tt.input)
			if got != tt.want {
				t.Errorf("Position(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLicenseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"B1", "B1"},
		{"  b1  ", "b1"}, // case preserved
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := LicenseNumber(tt.input)
			if got != tt.want {
				t.Errorf("LicenseNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryParam(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"search term", "search term"},
		{"  trimmed  ", "trimmed"},
		{"", ""},
		{"   ", ""},
		{"UPPERCASE", "UPPERCASE"}, // Preserves case
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := QueryParam(tt.input)
			if got != tt.want {
				t.Errorf("QueryParam(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
