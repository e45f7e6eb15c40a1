package flipurl

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"share url", "https://fliphtml5.com/abcde/fghij/My-Book", "https://online.fliphtml5.com/abcde/fghij/"},
		{"already reader url", "https://online.fliphtml5.com/abcde/fghij/", "https://online.fliphtml5.com/abcde/fghij/"},
		{"scheme-less", "fliphtml5.com/abcde/fghij", "https://online.fliphtml5.com/abcde/fghij/"},
		{"extra segments", "https://fliphtml5.com/abcde/fghij/Title/extra/", "https://online.fliphtml5.com/abcde/fghij/"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.input)
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeRejectsShortPaths(t *testing.T) {
	for _, input := range []string{"", "https://fliphtml5.com/", "https://fliphtml5.com/onlyone"} {
		if _, err := Normalize(input); !errors.Is(err, ErrInvalidShareURL) {
			t.Errorf("Normalize(%q) error = %v, want ErrInvalidShareURL", input, err)
		}
	}
}

func TestBookID(t *testing.T) {
	if got := BookID("https://online.fliphtml5.com/abcde/fghij/"); got != "abcde/fghij" {
		t.Errorf("BookID = %q, want abcde/fghij", got)
	}
}
