package telegram

import (
	"strings"
	"unicode"
)

// MaxMessageLength is Telegram's limit on message text, in characters.
const MaxMessageLength = 4096

// splitMessage cuts text into parts of at most limit runes. Each cut is made
// at the last newline inside the window when there is one, and the next part
// starts without leading whitespace. Text is expected to be HTML-escaped
// already; a cut without a newline is moved back so it never lands inside an
// entity such as &amp; or a tag such as <b>.
func splitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			parts = append(parts, string(runes))
			break
		}
		cut := lastNewline(runes[:limit])
		if cut <= 0 {
			cut = markupSafeCut(runes[:limit])
		}
		parts = append(parts, string(runes[:cut]))
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	return parts
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

// maxMarkupRunes bounds how far back markupSafeCut looks for an open entity
// or tag. It covers the entities html.EscapeString produces and the short
// formatting tags the bot writes.
const maxMarkupRunes = 8

// markupSafeCut returns len(window), or the position of an '&' or '<' near
// the end of window that is not closed inside it.
func markupSafeCut(window []rune) int {
	stop := len(window) - maxMarkupRunes
	if stop < 0 {
		stop = 0
	}
	for i := len(window) - 1; i >= stop; i-- {
		switch window[i] {
		case ';', '>':
			return len(window)
		case '&', '<':
			if i == 0 {
				return len(window)
			}
			return i
		}
	}
	return len(window)
}
