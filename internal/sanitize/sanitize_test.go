package sanitize

import (
	"errors"
	"strings"
	"testing"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain name", "plain name"},
		{"<b>Sword</b>", "Sword"},
		{"Sword &amp; Shield", "Sword  Shield"},
		{"javascript:alert(1)", "alert(1)"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextAcceptsNormalNames(t *testing.T) {
	got, err := Text("  Hand of Sulfuras  ", 100)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "Hand of Sulfuras" {
		t.Errorf("expected trimmed name, got %q", got)
	}
}

func TestTextRejectsEmpty(t *testing.T) {
	if _, err := Text("", 100); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestTextRejectsTooLong(t *testing.T) {
	if _, err := Text(strings.Repeat("a", 101), 100); !errors.Is(err, ErrTooLong) {
		t.Errorf("expected ErrTooLong for 101-char input, got %v", err)
	}
	if _, err := Text(strings.Repeat("a", 100), 100); err != nil {
		t.Errorf("100 chars should pass, got %v", err)
	}
}

func TestTextRejectsSuspiciousContent(t *testing.T) {
	for _, hostile := range []string{
		"eval(document.cookie)",
		"${jinja}",
		"{{template}}",
		"window.location",
	} {
		if _, err := Text(hostile, 100); err == nil {
			t.Errorf("expected rejection of %q", hostile)
		}
	}
}

func TestTextStripsTagsBeforeValidating(t *testing.T) {
	got, err := Text("<i>Frostmourne</i>", 100)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "Frostmourne" {
		t.Errorf("expected stripped name, got %q", got)
	}
}
