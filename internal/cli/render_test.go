package cli

import (
	"testing"
	"unicode/utf8"
)

func TestClip(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than max", "Buy milk", 22, "Buy milk"},
		{"exactly max", "1234567890", 10, "1234567890"},
		{"clipped ascii", "a very long task name here", 12, "a very lo..."},
		{"clipped multibyte", "задача с длинным именем", 12, "задача с ..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := clip(tc.in, tc.max)
			if got != tc.want {
				t.Fatalf("clip(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("clip produced invalid UTF-8: %q", got)
			}
		})
	}
}
