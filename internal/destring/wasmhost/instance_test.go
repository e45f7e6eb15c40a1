package wasmhost

import "testing"

func TestCString(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
		want  string
	}{
		{"terminated", []byte("hello\x00junk"), "hello"},
		{"unterminated", []byte("hello"), "hello"},
		{"empty", []byte{0}, ""},
		{"leading nul", []byte("\x00hello"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(cString(tc.input)); got != tc.want {
				t.Errorf("cString(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
