// internal/prompt/sanitize.go
package prompt

import (
	"regexp"
	"strings"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

var normalizer = strings.NewReplacer(
	`\`, `\\`,
	"\t", " ",
	"\r\n", "\n",
	"\r", "\n",
)

// Sanitize prepares user text for a prompt. Backslashes are escaped, tabs
// become spaces, line endings are normalized and runs of blank lines are
// collapsed. Text over maxRunes is cut at the last sentence end when that
// falls in the second half, otherwise hard-cut with "..." appended.
func Sanitize(text string, maxRunes int) string {
	safe := normalizer.Replace(text)
	safe = excessNewlines.ReplaceAllString(safe, "\n\n")
	safe = strings.TrimSpace(safe)

	if maxRunes <= 0 {
		return safe
	}
	runes := []rune(safe)
	if len(runes) <= maxRunes {
		return safe
	}

	truncated := string(runes[:maxRunes])
	if dot := strings.LastIndex(truncated, "."); dot >= 0 && len([]rune(truncated[:dot])) > maxRunes/2 {
		return truncated[:dot+1]
	}
	return truncated + "..."
}

// Summarize shortens text for log lines, preferring a word boundary.
func Summarize(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	truncated := string(runes[:maxRunes])
	if sp := strings.LastIndex(truncated, " "); sp >= 0 && len([]rune(truncated[:sp])) > maxRunes/2 {
		truncated = truncated[:sp]
	}
	return truncated + "..."
}

// Head returns at most n runes of the trimmed text.
func Head(text string, n int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if n < 0 || len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
