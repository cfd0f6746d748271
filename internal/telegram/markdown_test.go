package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	parts := SplitMessage("aaaaaa\nbbbbbbbbbb", 10)
	assert.Equal(t, []string{"aaaaaa\n", "bbbbbbbbbb"}, parts)

	long := strings.Repeat("x", 25)
	parts = SplitMessage(long, 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, parts)
}

func TestSplitMessageCountsRunes(t *testing.T) {
	parts := SplitMessage(strings.Repeat("🔹", 12), 10)
	assert.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("🔹", 10), parts[0])
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "SIM\\_LOCK \\*free\\* \\`x\\` \\[y]", EscapeMarkdown("SIM_LOCK *free* `x` [y]"))
}

func TestFixMarkdown(t *testing.T) {
	assert.Equal(t, "`code`", FixMarkdown("`code"))
	assert.Equal(t, "```\nblock\n```", FixMarkdown("```\nblock"))
	assert.Equal(t, "ok `a` \\`", FixMarkdown("ok `a` \\`"))
}
