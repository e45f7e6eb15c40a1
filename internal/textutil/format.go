package textutil

import "strings"

var descriptionReplacer = strings.NewReplacer(
	"<br>", " ",
	"<br/>", " ",
	"<br />", " ",
	"\n", " ",
	"\r", " ",
)

// CleanDescription normalizes metadata description text: line breaks and
// <br> tags collapse to spaces, runs of whitespace collapse to one space.
// maxLen of 0 means no truncation.
func CleanDescription(value string, maxLen int) string {
	if value == "" {
		return ""
	}
	desc := descriptionReplacer.Replace(value)
	desc = strings.Join(strings.Fields(desc), " ")
	if maxLen > 3 && len(desc) > maxLen {
		desc = strings.TrimRight(desc[:maxLen-3], " ") + "..."
	}
	return desc
}

// ShortLabel returns a label shortened to maxLen with a middle ellipsis,
// keeping head and tail so page filenames stay recognizable.
func ShortLabel(value string, maxLen int) string {
	if value == "" {
		return "-"
	}
	if maxLen <= 0 || len(value) <= maxLen {
		return value
	}
	if maxLen < 10 {
		return value[:maxLen]
	}
	head := maxLen/2 - 2
	tail := maxLen - head - 3
	return value[:head] + "..." + value[len(value)-tail:]
}
