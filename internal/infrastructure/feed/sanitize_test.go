package feed

import (
	"strings"
	"testing"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain text", "plain text"},
		{"line\none   <br/> line two", "line one line two"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripHTML(tt.in); got != tt.want {
			t.Fatalf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateWordsKeepsBoundaries(t *testing.T) {
	t.Parallel()

	got := truncateWords("alpha beta gamma delta", 12)
	if got != "alpha beta" {
		t.Fatalf("unexpected truncation: %q", got)
	}

	if strings.Contains(got, "gam") {
		t.Fatalf("word split mid-way: %q", got)
	}
}

func TestTruncateWordsShortInputUnchanged(t *testing.T) {
	t.Parallel()

	in := "short excerpt"
	if got := truncateWords(in, 500); got != in {
		t.Fatalf("short input changed: %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	if got := truncateRunes("abcdef", 4); got != "abcd" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := truncateRunes("héllo wörld", 7); got != "héllo w" {
		t.Fatalf("rune-unsafe truncation: %q", got)
	}
}
