package telegram

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage splits a message into chunks of at most maxLen runes,
// preferring to cut after a newline in the second half of a chunk.
func SplitMessage(text string, maxLen int) []string {
	var parts []string
	for utf8.RuneCountInString(text) > maxLen {
		runes := []rune(text)
		cut := maxLen
		if nl := strings.LastIndex(string(runes[:maxLen]), "\n"); nl >= 0 {
			if n := utf8.RuneCountInString(string(runes[:maxLen])[:nl]); n > maxLen/2 {
				cut = n + 1
			}
		}
		parts = append(parts, string(runes[:cut]))
		text = string(runes[cut:])
	}
	return append(parts, text)
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown escapes legacy Markdown control characters in values
// coming from outside the bot.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FixMarkdown closes an unbalanced code block or inline code span so that
// Telegram accepts the message.
func FixMarkdown(text string) string {
	if strings.Count(text, "```")%2 != 0 {
		text += "\n```"
	}

	inBlock := false
	inline := false
	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], "```") {
			inBlock = !inBlock
			i += 2
			continue
		}
		if !inBlock && text[i] == '`' && (i == 0 || text[i-1] != '\\') {
			inline = !inline
		}
	}
	if inline {
		text += "`"
	}
	return text
}
