package modals

import (
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"
)

// ModalInputCharLimit bounds free-text modal inputs.
const ModalInputCharLimit = 256

// ConfirmDeleteState asks before a conversation is deleted.
type ConfirmDeleteState struct {
	ConversationID string
	title          string
	confirmed      bool
	form           *huh.Form
}

func (*ConfirmDeleteState) modalState() {}

func (s *ConfirmDeleteState) Title() string { return "Delete Conversation?" }

func (s *ConfirmDeleteState) Help() string {
	return "left/right: choose  Enter: confirm  Esc: cancel"
}

func (s *ConfirmDeleteState) Render() string {
	name := lipgloss.NewStyle().Foreground(ColorText).Bold(true).Render(TruncateString(s.title, ModalInputWidth))
	note := lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true).Render("This cannot be undone.")
	return lipgloss.JoinVertical(lipgloss.Left,
		ModalTitleStyle.Render(s.Title()),
		name,
		note,
		"",
		s.form.View(),
		ModalHelpStyle.Render(s.Help()),
	)
}

func (s *ConfirmDeleteState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// Confirmed reports whether "Delete" is chosen.
func (s *ConfirmDeleteState) Confirmed() bool {
	return s.confirmed
}

// NewConfirmDeleteState creates the delete confirmation for one conversation.
func NewConfirmDeleteState(conversationID, title string) *ConfirmDeleteState {
	s := &ConfirmDeleteState{ConversationID: conversationID, title: title}
	s.form = newForm(huh.NewGroup(
		huh.NewConfirm().
			Affirmative("Delete").
			Negative("Cancel").
			Value(&s.confirmed),
	))
	return s
}

// AttachState asks for the paths of files to stage.
type AttachState struct {
	paths string
	form  *huh.Form
}

func (*AttachState) modalState() {}

func (s *AttachState) Title() string { return "Attach Files" }

func (s *AttachState) Help() string {
	return "Separate paths with commas  Enter: attach  Esc: cancel"
}

func (s *AttachState) Render() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		ModalTitleStyle.Render(s.Title()),
		s.form.View(),
		ModalHelpStyle.Render(s.Help()),
	)
}

func (s *AttachState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// Paths returns the entered paths with a leading ~ expanded.
func (s *AttachState) Paths() []string {
	var paths []string
	for _, p := range strings.Split(s.paths, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, ExpandHome(p))
	}
	return paths
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// NewAttachState creates the attach modal.
func NewAttachState() *AttachState {
	s := &AttachState{}
	s.form = newForm(huh.NewGroup(
		huh.NewInput().
			Title("File path").
			Placeholder("~/notes.txt, ./diagram.png").
			CharLimit(ModalInputCharLimit * 4).
			Value(&s.paths),
	))
	return s
}
