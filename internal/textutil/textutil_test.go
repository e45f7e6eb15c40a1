package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"My Great Book", "My_Great_Book"},
		{"a/b\\c:d", "a_b_c_d"},
		{"", "book"},
		{"???", "book"},
		{"  trimmed  ", "trimmed"},
		{"Ünïcode Titlé", "Ünïcode_Titlé"},
		{"v1.2-final", "v1.2-final"},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.input); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCleanDescription(t *testing.T) {
	input := "First line<br>second\nthird   with   gaps"
	want := "First line second third with gaps"
	if got := CleanDescription(input, 0); got != want {
		t.Errorf("CleanDescription = %q, want %q", got, want)
	}

	if got := CleanDescription("abcdefghij", 8); got != "abcde..." {
		t.Errorf("truncated = %q, want abcde...", got)
	}
}

func TestShortLabel(t *testing.T) {
	if got := ShortLabel("", 36); got != "-" {
		t.Errorf("empty label = %q, want -", got)
	}
	if got := ShortLabel("short.jpg", 36); got != "short.jpg" {
		t.Errorf("short label = %q, want unchanged", got)
	}
	long := "001_very_long_page_filename_that_keeps_going.jpg"
	got := ShortLabel(long, 20)
	if len(got) != 20 {
		t.Errorf("ShortLabel length = %d, want 20 (%q)", len(got), got)
	}
	if got[:8] != long[:8] {
		t.Errorf("ShortLabel head %q does not match input", got)
	}
}
