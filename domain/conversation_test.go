package domain

import "testing"

func TestNormalizeSessionKey(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"+919876543210", "919876543210"},
		{"919876543210", "919876543210"},
		{"9876543210", "919876543210"},
		{"+91 98765 43210", "919876543210"},
		{"98765-43210", "919876543210"},
		{"", ""},
	}

	for _, tc := range cases {
		got := NormalizeSessionKey(tc.raw, "91")
		if got != tc.want {
			t.Fatalf("NormalizeSessionKey(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeSessionKeyIdempotent(t *testing.T) {
	once := NormalizeSessionKey("+9876543210", "91")
	twice := NormalizeSessionKey(once, "91")
	if once != twice {
		t.Fatalf("normalization not idempotent: %q vs %q", once, twice)
	}
}
