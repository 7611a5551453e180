package telegram

import (
	"fmt"
	"strings"

	"twse-announcements/internal/entity"
)

const maxMessageLen = 4090

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes the characters legacy Telegram Markdown treats as markup.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatAnnouncementDigest renders newly stored announcements as one or more
// Markdown messages, each below Telegram's message size limit.
func FormatAnnouncementDigest(queryDate string, announcements []entity.Announcement, describe func(code string) string) []string {
	if len(announcements) == 0 {
		return []string{fmt.Sprintf("📭 *重大訊息 %s*\n\n沒有新的重大訊息", queryDate)}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString(fmt.Sprintf("📢 *重大訊息 %s* (%d)\n\n", queryDate, len(announcements)))
		} else {
			current.WriteString(fmt.Sprintf("--- *重大訊息 %s Part %d* ---\n\n", queryDate, part))
		}
	}
	startNewPart()

	for _, a := range announcements {
		var entry strings.Builder
		entry.WriteString(fmt.Sprintf("🏢 *%s %s* `%s`\n", EscapeMarkdown(a.CompanyCode), EscapeMarkdown(a.CompanyName), a.Time))
		entry.WriteString(fmt.Sprintf("📝 %s\n", EscapeMarkdown(a.Title)))
		if a.ClauseCode != nil {
			label := *a.ClauseCode
			if describe != nil {
				if desc := describe(*a.ClauseCode); desc != "" {
					label = fmt.Sprintf("%s %s", *a.ClauseCode, desc)
				}
			}
			entry.WriteString(fmt.Sprintf("📋 條款: %s\n", EscapeMarkdown(label)))
		}
		if a.FactOccurrenceDate != nil {
			entry.WriteString(fmt.Sprintf("📅 事實發生日: %s\n", *a.FactOccurrenceDate))
		}
		entry.WriteString("\n")

		text := entry.String()
		if current.Len()+len(text) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(text)
	}

	messages = append(messages, current.String())
	return messages
}
