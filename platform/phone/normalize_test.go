package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	if got := NormalizeE164("(650) 253-0000"); got != "+16502530000" {
		t.Fatalf("expected +16502530000, got %q", got)
	}
	if got := NormalizeE164("  not a phone "); got != "not a phone" {
		t.Fatalf("expected trimmed passthrough, got %q", got)
	}
	if got := NormalizeE164(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestDisplayUsesNationalFormatForUSNumbers(t *testing.T) {
	if got := Display("+1 650 253 0000"); got != "(650) 253-0000" {
		t.Fatalf("expected national format, got %q", got)
	}
}
