package ui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/parley/internal/api"
)

func testConversations() []api.ConversationSummary {
	return []api.ConversationSummary{
		{ID: "c1", Title: "Groceries"},
		{ID: "c2", Title: `"Is it raining? Asking for a friend"`},
		{ID: "c3", Title: "A very long conversation title that keeps going"},
	}
}

func pressKey(s *Sidebar, code rune) {
	s.Update(tea.KeyPressMsg{Code: code})
}

func TestNewSidebar(t *testing.T) {
	sidebar := NewSidebar()

	if sidebar.IsFocused() {
		t.Error("Expected sidebar to start unfocused")
	}
	if _, ok := sidebar.Selected(); ok {
		t.Error("Expected no selection on an empty sidebar")
	}
}

func TestSidebar_Navigation(t *testing.T) {
	sidebar := NewSidebar()
	sidebar.SetSize(30, 20)
	sidebar.SetFocused(true)
	sidebar.SetConversations(testConversations(), "")

	tests := []struct {
		code rune
		want string
	}{
		{tea.KeyDown, "c2"},
		{tea.KeyDown, "c3"},
		{tea.KeyDown, "c3"},
		{tea.KeyUp, "c2"},
		{tea.KeyHome, "c1"},
		{tea.KeyUp, "c1"},
		{tea.KeyEnd, "c3"},
	}
	for i, tt := range tests {
		pressKey(sidebar, tt.code)
		got, _ := sidebar.Selected()
		if got.ID != tt.want {
			t.Errorf("step %d: expected %s selected, got %s", i, tt.want, got.ID)
		}
	}
}

func TestSidebar_IgnoresKeysWhenUnfocused(t *testing.T) {
	sidebar := NewSidebar()
	sidebar.SetSize(30, 20)
	sidebar.SetConversations(testConversations(), "")

	pressKey(sidebar, tea.KeyDown)

	if got, _ := sidebar.Selected(); got.ID != "c1" {
		t.Errorf("Expected selection to stay on c1, got %s", got.ID)
	}
}

func TestSidebar_SetConversations_KeepsSelection(t *testing.T) {
	sidebar := NewSidebar()
	sidebar.SetSize(30, 20)
	sidebar.SetFocused(true)
	sidebar.SetConversations(testConversations(), "")
	pressKey(sidebar, tea.KeyDown)

	reordered := []api.ConversationSummary{
		{ID: "c4", Title: "New one"},
		{ID: "c1", Title: "Groceries"},
		{ID: "c2", Title: "France"},
	}
	sidebar.SetConversations(reordered, "c4")

	if got, _ := sidebar.Selected(); got.ID != "c2" {
		t.Errorf("Expected selection to follow c2, got %s", got.ID)
	}

	// Deleted selection falls back to the top.
	sidebar.SetConversations(reordered[:2], "c4")
	if got, _ := sidebar.Selected(); got.ID != "c4" {
		t.Errorf("Expected selection to reset to c4, got %s", got.ID)
	}
}

func TestSidebar_ScrollsToSelection(t *testing.T) {
	var items []api.ConversationSummary
	for _, id := range strings.Split("a b c d e f g h i j", " ") {
		items = append(items, api.ConversationSummary{ID: id, Title: "Chat " + id})
	}

	sidebar := NewSidebar()
	sidebar.SetSize(30, 6) // three visible rows
	sidebar.SetFocused(true)
	sidebar.SetConversations(items, "")

	pressKey(sidebar, tea.KeyEnd)
	view := ansi.Strip(sidebar.View())
	if !strings.Contains(view, "Chat j") {
		t.Error("Expected last conversation to be visible after End")
	}
	if strings.Contains(view, "Chat a") {
		t.Error("Expected first conversation to be scrolled out")
	}
}

func TestSidebar_View(t *testing.T) {
	sidebar := NewSidebar()
	sidebar.SetSize(40, 20)

	if !strings.Contains(ansi.Strip(sidebar.View()), "No conversations yet") {
		t.Error("Expected empty state text")
	}

	sidebar.SetConversations(testConversations(), "c1")
	view := ansi.Strip(sidebar.View())
	for _, want := range []string{
		"Conversations",
		"● Groceries",
		"Is it raining?",
		"A very long conversation ...",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected sidebar to contain %q, got:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Asking") {
		t.Error("Expected question titles to stop at the question mark")
	}
}
