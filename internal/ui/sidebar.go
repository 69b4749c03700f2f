package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/keys"
)

// Sidebar represents the left panel with the conversation list
type Sidebar struct {
	width    int
	height   int
	focused  bool
	items    []api.ConversationSummary
	selected int
	offset   int
	activeID string
}

// NewSidebar creates a new sidebar
func NewSidebar() *Sidebar {
	return &Sidebar{}
}

// SetSize sets the sidebar dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.clampOffset()
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// SetConversations replaces the list, keeping the selection on the same
// conversation when it still exists.
func (s *Sidebar) SetConversations(items []api.ConversationSummary, activeID string) {
	var selectedID string
	if cur, ok := s.Selected(); ok {
		selectedID = cur.ID
	}

	s.items = items
	s.activeID = activeID
	s.selected = 0
	for i, it := range items {
		if it.ID == selectedID {
			s.selected = i
			break
		}
	}
	s.clampOffset()
}

// SetActive marks the conversation shown in the chat panel.
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

// Selected returns the highlighted conversation.
func (s *Sidebar) Selected() (api.ConversationSummary, bool) {
	if s.selected < 0 || s.selected >= len(s.items) {
		return api.ConversationSummary{}, false
	}
	return s.items[s.selected], true
}

// Len returns the number of conversations.
func (s *Sidebar) Len() int {
	return len(s.items)
}

func (s *Sidebar) visibleRows() int {
	return max(1, s.height-BorderSize-1)
}

func (s *Sidebar) clampOffset() {
	if s.selected >= len(s.items) {
		s.selected = max(0, len(s.items)-1)
	}
	rows := s.visibleRows()
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+rows {
		s.offset = s.selected - rows + 1
	}
	s.offset = max(0, min(s.offset, max(0, len(s.items)-rows)))
}

// Update handles list navigation.
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || !s.focused || len(s.items) == 0 {
		return s, nil
	}
	switch key.String() {
	case keys.Up, "k":
		if s.selected > 0 {
			s.selected--
		}
	case keys.Down, "j":
		if s.selected < len(s.items)-1 {
			s.selected++
		}
	case keys.Home, "g":
		s.selected = 0
	case keys.End, "G":
		s.selected = len(s.items) - 1
	}
	s.clampOffset()
	return s, nil
}

// View renders the sidebar
func (s *Sidebar) View() string {
	style := PanelStyle
	if s.focused {
		style = PanelFocusedStyle
	}
	innerWidth := max(1, s.width-BorderSize)

	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Conversations"))
	b.WriteString("\n")

	if len(s.items) == 0 {
		b.WriteString(SidebarEmptyStyle.Render("No conversations yet"))
	}

	end := min(len(s.items), s.offset+s.visibleRows())
	for i := s.offset; i < end; i++ {
		it := s.items[i]
		title := chat.SummarizeTitle(it.Title)
		prefix := "  "
		if it.ID == s.activeID {
			prefix = "● "
		}

		itemStyle := SidebarItemStyle
		switch {
		case i == s.selected && s.focused:
			itemStyle = SidebarSelectedStyle
		case it.ID == s.activeID:
			itemStyle = SidebarActiveStyle
		}
		b.WriteString(itemStyle.Width(innerWidth).Render(prefix + title))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return style.
		Width(s.width).
		Height(s.height).
		Render(lipgloss.NewStyle().MaxWidth(innerWidth).Render(b.String()))
}
