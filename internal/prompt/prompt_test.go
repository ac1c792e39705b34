// internal/prompt/prompt_test.go
package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"escapes backslashes", `C:\logs`, 100, `C:\\logs`},
		{"tabs to spaces", "a\tb", 100, "a b"},
		{"crlf and cr", "a\r\nb\rc", 100, "a\nb\nc"},
		{"collapses blank lines", "a\n\n\n\n\nb", 100, "a\n\nb"},
		{"keeps double newline", "a\n\nb", 100, "a\n\nb"},
		{"trims", "  hello  \n", 100, "hello"},
		{"no cap", "abc", 0, "abc"},
		{"cut at sentence", "First sentence here. Tail words", 25, "First sentence here."},
		{"hard cut when dot too early", "Hi. abcdefghijklmnopqrstuvwxyz", 10, "Hi. abcdef..."},
		{"hard cut without dot", "abcdefghij", 5, "abcde..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, tt.max))
		})
	}
}

func TestSanitize_Runes(t *testing.T) {
	in := strings.Repeat("é", 30)
	out := Sanitize(in, 10)
	assert.Equal(t, strings.Repeat("é", 10)+"...", out)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "short", Summarize("short", 10))
	assert.Equal(t, "hello big...", Summarize("hello big world", 12))
	assert.Equal(t, "abcdefghij...", Summarize("abcdefghijklmnop", 10))
}

func TestFollowUpScenario(t *testing.T) {
	caps := FollowUpCaps{Scenario: 5, Message: 3, Answer: 4}
	got := FollowUpScenario("  scenario text ", "question", "answer text", caps)
	assert.Equal(t, "Original scenario: scena\n\nUser follow-up: que\n\nExpert analysis: answ", got)
}

func TestFollowUpScenario_DefaultCaps(t *testing.T) {
	long := strings.Repeat("x", 2000)
	got := FollowUpScenario(long, long, long, DefaultFollowUpCaps())

	parts := strings.Split(got, "\n\n")
	assert.Len(t, parts, 3)
	assert.Len(t, strings.TrimPrefix(parts[0], "Original scenario: "), 500)
	assert.Len(t, strings.TrimPrefix(parts[1], "User follow-up: "), 1000)
	assert.Len(t, strings.TrimPrefix(parts[2], "Expert analysis: "), 1000)
}
