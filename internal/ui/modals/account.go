package modals

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"
)

// LoginState asks for the account credentials.
type LoginState struct {
	email    string
	password string
	server   string
	form     *huh.Form
}

func (*LoginState) modalState() {}

func (s *LoginState) Title() string { return "Sign In" }

func (s *LoginState) Help() string {
	return "Tab: next field  Enter: sign in  Esc: cancel"
}

func (s *LoginState) Render() string {
	parts := []string{ModalTitleStyle.Render(s.Title())}
	if s.server != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorTextMuted).Render(TruncateString(s.server, ModalInputWidth)))
	}
	parts = append(parts, s.form.View(), ModalHelpStyle.Render(s.Help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *LoginState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// Credentials returns the trimmed email and the password as typed.
func (s *LoginState) Credentials() (email, password string) {
	return strings.TrimSpace(s.email), s.password
}

// NewLoginState creates the sign-in modal, prefilled with email when known.
func NewLoginState(server, email string) *LoginState {
	s := &LoginState{email: email, server: server}
	s.form = newForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			CharLimit(ModalInputCharLimit).
			Value(&s.email),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			CharLimit(ModalInputCharLimit).
			Value(&s.password),
	))
	return s
}
