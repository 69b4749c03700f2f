package app

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/logger"
)

// slashCommandDef defines a slash command with its help text.
type slashCommandDef struct {
	name        string
	description string
	run         func(m *Model) (tea.Model, tea.Cmd)
}

// getSlashCommands returns the registry of available slash commands.
// Using a function instead of a var avoids initialization cycles.
func getSlashCommands() []slashCommandDef {
	return []slashCommandDef{
		{name: "new", description: "Start a new conversation", run: shortcutNewConversation},
		{name: "attach", description: "Attach files", run: shortcutAttach},
		{name: "copy", description: "Copy the last reply", run: shortcutCopyReply},
		{name: "code", description: "Copy the last code block", run: shortcutCopyCode},
		{name: "upgrade", description: "Upgrade plan", run: slashRequiresLogin(shortcutUpgrade)},
		{name: "logout", description: "Sign out", run: slashRequiresLogin(func(m *Model) (tea.Model, tea.Cmd) {
			return m, m.logout()
		})},
		{name: "help", description: "Show keyboard shortcuts", run: shortcutHelp},
	}
}

func slashRequiresLogin(run func(m *Model) (tea.Model, tea.Cmd)) func(m *Model) (tea.Model, tea.Cmd) {
	return func(m *Model) (tea.Model, tea.Cmd) {
		if !m.config.IsLoggedIn() {
			m.showLogin()
			return m, nil
		}
		return run(m)
	}
}

// handleSlashCommand runs input as a local command when it names one.
// Unknown commands are sent to the assistant as ordinary text.
func (m *Model) handleSlashCommand(input string) (tea.Model, tea.Cmd, bool) {
	if !strings.HasPrefix(input, "/") {
		return m, nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(fields) == 0 {
		return m, nil, false
	}
	name := strings.ToLower(fields[0])

	for _, c := range getSlashCommands() {
		if c.name == name {
			logger.WithComponent("app").Debug("slash command", "command", name)
			m.chat.ClearInput()
			result, cmd := c.run(m)
			return result, cmd, true
		}
	}
	return m, nil, false
}
