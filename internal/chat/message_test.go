package chat

import (
	"testing"
	"time"

	"github.com/zhubert/parley/internal/api"
)

func TestSummarizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"empty", "", "New Chat"},
		{"only quotes", `"' '"`, "New Chat"},
		{"short", "Hello", "Hello"},
		{"quotes stripped", `"Hello" 'world'`, "Hello world"},
		{"question cut", "What is Go? And why", "What is Go?"},
		{"long", "Explain the difference between goroutines and threads", "Explain the difference be..."},
		{"exactly 25", "abcdefghijklmnopqrstuvwxy", "abcdefghijklmnopqrstuvwxy"},
		{"wide characters", "日本語のタイトルがとても長い場合", "日本語のタイトルがとても..."},
		{"surrounding space", "   padded   ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummarizeTitle(tt.title); got != tt.want {
				t.Errorf("SummarizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestExpandTurns(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	msgs := expandTurns([]api.Turn{
		{UserMessage: "u1", BotReply: "b1", Timestamp: api.Timestamp{Time: ts}},
	})

	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Errorf("roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if !msgs[0].Timestamp.Equal(ts) || !msgs[1].Timestamp.Equal(ts) {
		t.Error("both messages should share the turn timestamp")
	}
	if len(expandTurns(nil)) != 0 {
		t.Error("no turns should expand to no messages")
	}
}
