package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// DefaultFlashDuration is how long a flash message stays in the footer.
const DefaultFlashDuration = 4 * time.Second

// FlashType is the severity of a flash message.
type FlashType int

const (
	FlashInfo FlashType = iota
	FlashSuccess
	FlashWarning
	FlashError
)

// Icon returns the glyph shown before a flash message.
func (t FlashType) Icon() string {
	switch t {
	case FlashSuccess:
		return "✓"
	case FlashWarning:
		return "⚠"
	case FlashError:
		return "✕"
	default:
		return "ℹ"
	}
}

// FlashMessage is a transient footer notice.
type FlashMessage struct {
	Text      string
	Type      FlashType
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the message has outlived its duration.
func (f *FlashMessage) IsExpired() bool {
	return time.Since(f.CreatedAt) >= f.Duration
}

// FlashTickMsg prompts the app to expire flash messages.
type FlashTickMsg time.Time

// FlashTick schedules the next expiry check.
func FlashTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// FooterContext selects which bindings the footer shows.
type FooterContext struct {
	SidebarFocused bool
	Active         bool // a send or reveal is in progress
	Detached       bool // the user scrolled away from the bottom
	HasStaged      bool
	HasReply       bool
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width        int
	bindings     []KeyBinding
	ctx          FooterContext
	flashMessage *FlashMessage
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{
		bindings: []KeyBinding{
			{Key: "tab", Desc: "switch pane"},
			{Key: "n", Desc: "new chat"},
			{Key: "d", Desc: "delete"},
			{Key: "u", Desc: "upgrade"},
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(ctx FooterContext) {
	f.ctx = ctx
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetFlash shows a flash message for DefaultFlashDuration.
func (f *Footer) SetFlash(text string, t FlashType) {
	f.SetFlashWithDuration(text, t, DefaultFlashDuration)
}

// SetFlashWithDuration shows a flash message for d.
func (f *Footer) SetFlashWithDuration(text string, t FlashType, d time.Duration) {
	f.flashMessage = &FlashMessage{Text: text, Type: t, CreatedAt: time.Now(), Duration: d}
}

// HasFlash reports whether a flash message is showing.
func (f *Footer) HasFlash() bool {
	return f.flashMessage != nil
}

// ClearFlash removes the flash message.
func (f *Footer) ClearFlash() {
	f.flashMessage = nil
}

// ClearIfExpired removes an expired flash message and reports whether it did.
func (f *Footer) ClearIfExpired() bool {
	if f.flashMessage != nil && f.flashMessage.IsExpired() {
		f.flashMessage = nil
		return true
	}
	return false
}

func (f *Footer) currentBindings() []KeyBinding {
	if f.ctx.SidebarFocused {
		return f.bindings
	}
	bindings := []KeyBinding{{Key: "enter", Desc: "send"}}
	if f.ctx.Active {
		bindings[0].Desc = "wait"
	}
	bindings = append(bindings, KeyBinding{Key: "ctrl+o", Desc: "attach"})
	if f.ctx.HasStaged {
		bindings = append(bindings, KeyBinding{Key: "ctrl+x", Desc: "unstage"})
	}
	if f.ctx.HasReply {
		bindings = append(bindings, KeyBinding{Key: "ctrl+y", Desc: "copy reply"})
	}
	if f.ctx.Detached {
		bindings = append(bindings, KeyBinding{Key: "ctrl+e", Desc: "jump to bottom"})
	}
	return append(bindings,
		KeyBinding{Key: "pgup/dn", Desc: "scroll"},
		KeyBinding{Key: "tab", Desc: "switch pane"},
	)
}

// View renders the footer
func (f *Footer) View() string {
	if f.flashMessage != nil {
		style := FlashStyles[f.flashMessage.Type]
		return FooterStyle.Width(f.width).Render(style.Render(f.flashMessage.Type.Icon() + " " + f.flashMessage.Text))
	}

	var parts []string
	for _, b := range f.currentBindings() {
		parts = append(parts, FooterKeyStyle.Render(b.Key)+FooterDescStyle.Render(": "+b.Desc))
	}
	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")
	return FooterStyle.Width(f.width).Render(content)
}
