package validation

import (
	"encoding/json"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    float64
		wantErr bool
	}{
		{"number", 19.99, 19.99, false},
		{"integer", 20, 20, false},
		{"numeric string", "12.5", 12.5, false},
		{"padded string", " 7 ", 7, false},
		{"json number", json.Number("3.14"), 3.14, false},
		{"rounds to two decimals", 1.006, 1.01, false},
		{"zero", 0.0, 0, false},
		{"negative", -1.0, 0, true},
		{"non-numeric string", "abc", 0, true},
		{"nil", nil, 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePrice(%v) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%v) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParsePrice(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAmountDefaultsToZero(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"number", 10.5, 10.5},
		{"string", "4.2", 4.2},
		{"nil", nil, 0},
		{"garbage", "not-a-number", 0},
		{"object", map[string]any{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAmount(tt.in); got != tt.want {
				t.Fatalf("ParseAmount(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsOrderNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"DD12345678", true},
		{"DD00000000", true},
		{"dd12345678", false},
		{"DD1234567", false},
		{"DD123456789", false},
		{"DD1234567a", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsOrderNumber(tt.in); got != tt.want {
			t.Fatalf("IsOrderNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"ok", "user", "secret1", true},
		{"exactly six", "user", "123456", true},
		{"short password", "user", "12345", false},
		{"empty username", "", "123456", false},
		{"blank username", "   ", "123456", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCredentials(tt.username, tt.password); got != tt.want {
				t.Fatalf("ValidCredentials(%q, %q) = %v, want %v", tt.username, tt.password, got, tt.want)
			}
		})
	}
}
