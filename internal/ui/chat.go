package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/parley/internal/attach"
	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/scroll"
)

// statusHeight is the line between the transcript and the input that shows
// the error banner, staged files or the jump hint.
const statusHeight = 1

// ChatView is the session state the chat panel renders.
type ChatView struct {
	Messages  []chat.Message
	Streaming string // revealed part of the reply being revealed
	Sending   bool
	Loading   bool
	Staged    []attach.File
	Banner    string
}

// Chat represents the right panel with conversation view
type Chat struct {
	viewport viewport.Model
	input    textarea.Model
	tracker  *scroll.Tracker
	width    int
	height   int
	focused  bool
	view     ChatView
}

// NewChat creates a new chat panel that scrolls according to tracker.
func NewChat(tracker *scroll.Tracker) *Chat {
	ti := textarea.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 0
	ti.SetHeight(TextareaHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{viewport: vp, input: ti, tracker: tracker}
	c.updateContent()
	return c
}

// SetTracker replaces the scroll tracker, e.g. after the session is rebuilt.
func (c *Chat) SetTracker(t *scroll.Tracker) {
	c.tracker = t
}

// SetSize sets the chat panel dimensions
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	ctx := GetViewContext()
	panelHeight := height - InputTotalHeight - statusHeight
	c.viewport.SetWidth(ctx.InnerWidth(width))
	c.viewport.SetHeight(max(1, ctx.InnerHeight(panelHeight)))
	c.input.SetWidth(ctx.InnerWidth(width) - InputPaddingWidth)
	c.updateContent()
}

// SetFocused sets the focus state
func (c *Chat) SetFocused(focused bool) {
	c.focused = focused
	if focused {
		c.input.Focus()
	} else {
		c.input.Blur()
	}
}

// IsFocused returns the focus state
func (c *Chat) IsFocused() bool {
	return c.focused
}

// SetView re-renders the transcript and follows the bottom when the scroll
// tracker allows it.
func (c *Chat) SetView(v ChatView) {
	c.view = v
	c.updateContent()
}

// Input returns the trimmed input text
func (c *Chat) Input() string {
	return strings.TrimSpace(c.input.Value())
}

// ClearInput clears the input field
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// SetInput sets the input field value
func (c *Chat) SetInput(value string) {
	c.input.SetValue(value)
}

// InsertInput inserts text at the cursor.
func (c *Chat) InsertInput(text string) {
	c.input.InsertString(text)
}

// JumpToBottom handles the explicit jump-to-bottom action.
func (c *Chat) JumpToBottom() {
	c.tracker.ScrollToBottom()
	c.viewport.GotoBottom()
}

// ShowJumpHint reports whether the user is away from the bottom.
func (c *Chat) ShowJumpHint() bool {
	return !c.tracker.AtBottom()
}

func (c *Chat) updateContent() {
	c.viewport.SetContent(c.renderTranscript())
	if c.tracker != nil {
		c.tracker.Follow(&c.viewport)
	}
}

func (c *Chat) renderTranscript() string {
	width := c.viewport.Width()
	if width <= 0 {
		width = DefaultWrapWidth
	}

	if c.view.Loading && len(c.view.Messages) == 0 {
		return ChatWaitingStyle.Render("Loading conversation...")
	}
	if len(c.view.Messages) == 0 && !c.view.Sending && c.view.Streaming == "" {
		return c.renderWelcome()
	}

	var parts []string
	for _, m := range c.view.Messages {
		parts = append(parts, RenderMessage(m, width))
	}
	switch {
	case c.view.Streaming != "":
		parts = append(parts, ChatAssistantStyle.Render("Assistant")+"\n"+RenderMarkdown(c.view.Streaming, width)+"▌")
	case c.view.Sending:
		parts = append(parts, ChatAssistantStyle.Render("Assistant")+"\n"+ChatWaitingStyle.Render("Thinking..."))
	}
	if c.view.Loading {
		parts = append(parts, ChatWaitingStyle.Render("Loading conversation..."))
	}
	return strings.Join(parts, "\n\n")
}

func (c *Chat) renderWelcome() string {
	msgStyle := lipgloss.NewStyle().Foreground(ColorTextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	var sb strings.Builder
	sb.WriteString(msgStyle.Italic(true).Render("Start a new conversation"))
	sb.WriteString("\n\n")
	sb.WriteString(msgStyle.Render("  • Type a message and press "))
	sb.WriteString(keyStyle.Render("enter"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • Press "))
	sb.WriteString(keyStyle.Render("ctrl+o"))
	sb.WriteString(msgStyle.Render(" to attach a file"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • Press "))
	sb.WriteString(keyStyle.Render("tab"))
	sb.WriteString(msgStyle.Render(" to browse past conversations"))
	return sb.String()
}

func (c *Chat) renderStatus() string {
	width := max(1, c.width)
	switch {
	case c.view.Banner != "":
		return ansi.Truncate(BannerStyle.Render("⚠ "+c.view.Banner), width, "…")
	case c.ShowJumpHint():
		return JumpHintStyle.Render("↓ new messages below (ctrl+e)")
	case len(c.view.Staged) > 0:
		var chips []string
		for i, f := range c.view.Staged {
			chips = append(chips, StagedFileStyle.Render(fmt.Sprintf("%d:%s %s", i+1, f.Name, attach.HumanSize(f.Size))))
		}
		return ansi.Truncate(strings.Join(chips, ""), width, "…")
	}
	return ""
}

// Update handles scrolling and text input.
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case keys.PgUp, keys.PgDown, keys.CtrlUp, keys.CtrlDown:
			return c, c.scroll(msg)
		}
	case tea.MouseWheelMsg:
		return c, c.scroll(msg)
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// scroll applies a user scroll and records the new position.
func (c *Chat) scroll(msg tea.Msg) tea.Cmd {
	before := c.viewport.YOffset()
	switch m := msg.(type) {
	case tea.KeyPressMsg:
		switch m.String() {
		case keys.PgUp:
			c.viewport.PageUp()
		case keys.PgDown:
			c.viewport.PageDown()
		case keys.CtrlUp:
			c.viewport.ScrollUp(1)
		case keys.CtrlDown:
			c.viewport.ScrollDown(1)
		}
	default:
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		if c.viewport.YOffset() != before {
			c.tracker.ObserveViewport(c.viewport)
		}
		return cmd
	}
	if c.viewport.YOffset() != before {
		c.tracker.ObserveViewport(c.viewport)
	}
	return nil
}

// View renders the chat panel
func (c *Chat) View() string {
	panelStyle := PanelStyle
	inputStyle := ChatInputStyle
	if c.focused {
		panelStyle = PanelFocusedStyle
		inputStyle = ChatInputFocusedStyle
	}

	panelHeight := c.height - InputTotalHeight - statusHeight
	transcript := panelStyle.Width(c.width).Height(panelHeight).Render(c.viewport.View())
	status := lipgloss.NewStyle().Width(c.width).Height(statusHeight).Render(c.renderStatus())
	input := inputStyle.Width(c.width).Render(c.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, transcript, status, input)
}
