package telegram

import (
	"strings"
	"unicode/utf16"

	"gopkg.in/telebot.v3"
)

// maxMessageLength is the Telegram limit for one text message, in UTF-16 code units.
const maxMessageLength = 4096

// splitMessage cuts text into chunks of at most limit UTF-16 code units.
// Chunks end on a line break where possible. Blank chunks are dropped.
func splitMessage(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	size := 0
	flush := func() {
		if chunk := strings.TrimRight(current.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		size = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		lineSize := utf16Len(line)
		if size+lineSize > limit {
			flush()
		}
		if lineSize <= limit {
			current.WriteString(line)
			size += lineSize
			continue
		}
		// A single line longer than the limit is cut between runes.
		for _, r := range line {
			n := utf16.RuneLen(r)
			if n < 0 {
				n = 1
			}
			if size+n > limit {
				flush()
			}
			current.WriteRune(r)
			size += n
		}
	}
	flush()
	return chunks
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// sendLong sends text split to the message limit. opts go with the last chunk.
func sendLong(c telebot.Context, text string, opts ...interface{}) error {
	chunks := splitMessage(text, maxMessageLength)
	for i, chunk := range chunks {
		if i < len(chunks)-1 {
			if err := c.Send(chunk); err != nil {
				return err
			}
			continue
		}
		return c.Send(chunk, opts...)
	}
	return nil
}
