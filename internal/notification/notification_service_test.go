package notification

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"ShortUntouched", "hello", 80, "hello"},
		{"ExactLimit", strings.Repeat("x", 80), 80, strings.Repeat("x", 80)},
		{"CutASCII", strings.Repeat("x", 81), 80, strings.Repeat("x", 80) + "…"},
		// "é" is two bytes; a byte-wise cut at 3 would split it
		{"CutOnRuneBoundary", "abéé", 3, "ab…"},
		{"CutMultibyteRun", strings.Repeat("世", 30), 80, strings.Repeat("世", 26) + "…"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.in, tc.max)
			if got != tc.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}
