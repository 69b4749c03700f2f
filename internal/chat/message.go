package chat

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/attach"
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrorPrefix starts the content of every error-flagged assistant message.
const ErrorPrefix = "⚠️ Error: "

// Message is one entry of the conversation history. Messages are never
// modified after they are appended.
type Message struct {
	Role      Role
	Content   string
	Files     []attach.FileRef
	Timestamp time.Time
	IsError   bool
}

// expandTurns turns stored exchanges into a user and an assistant message
// each, sharing the turn's timestamp.
func expandTurns(turns []api.Turn) []Message {
	msgs := make([]Message, 0, len(turns)*2)
	for _, t := range turns {
		msgs = append(msgs,
			Message{Role: RoleUser, Content: t.UserMessage, Timestamp: t.Timestamp.Time},
			Message{Role: RoleAssistant, Content: t.BotReply, Timestamp: t.Timestamp.Time},
		)
	}
	return msgs
}

const (
	maxTitleWidth   = 25
	defaultTitle    = "New Chat"
	titleEllipsis   = "..."
	titleQuoteChars = `"'`
)

// SummarizeTitle shortens a conversation title for the sidebar. Quotes are
// removed, a question is cut after its first question mark, and anything
// wider than 25 cells is truncated with an ellipsis.
func SummarizeTitle(title string) string {
	clean := strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(titleQuoteChars, r) {
			return -1
		}
		return r
	}, title))

	if i := strings.Index(clean, "?"); i >= 0 {
		clean = clean[:i+1]
	}

	if runewidth.StringWidth(clean) > maxTitleWidth {
		clean = runewidth.Truncate(clean, maxTitleWidth, "") + titleEllipsis
	}

	if clean == "" {
		return defaultTitle
	}
	return clean
}
