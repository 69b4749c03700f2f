package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/clipboard"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/ui"
	"github.com/zhubert/parley/internal/ui/modals"
)

// Shortcut represents a keyboard shortcut with its metadata and handler.
// This is the single source of truth for all shortcuts in the application.
type Shortcut struct {
	Key             string                              // The key binding (e.g., "n", "ctrl+o")
	DisplayKey      string                              // Display name in help; defaults to Key
	Description     string                              // Human-readable description
	Category        string                              // Section for help modal grouping
	RequiresSidebar bool                                // Must not be in chat focus
	RequiresLogin   bool                                // Must be signed in
	Handler         func(m *Model) (tea.Model, tea.Cmd) // Action to perform
	Condition       func(m *Model) bool                 // Optional extra condition
}

// Categories for organizing shortcuts in the help modal
const (
	CategoryNavigation    = "Navigation"
	CategoryConversations = "Conversations"
	CategoryChat          = "Chat"
	CategoryAccount       = "Account"
	CategoryGeneral       = "General"
)

var categoryOrder = []string{
	CategoryNavigation,
	CategoryConversations,
	CategoryChat,
	CategoryAccount,
	CategoryGeneral,
}

// ShortcutRegistry is the central registry of all keyboard shortcuts.
// Shortcuts listed here appear in the help modal and can be run from it.
var ShortcutRegistry = []Shortcut{
	// Navigation
	{
		Key:         keys.Tab,
		DisplayKey:  "Tab",
		Description: "Switch between sidebar and chat",
		Category:    CategoryNavigation,
		Handler:     shortcutToggleFocus,
	},
	{
		Key:         keys.CtrlE,
		DisplayKey:  "ctrl-e",
		Description: "Jump to newest message",
		Category:    CategoryNavigation,
		Handler:     shortcutJumpToBottom,
	},

	// Conversations
	{
		Key:             "n",
		Description:     "Start a new conversation",
		Category:        CategoryConversations,
		RequiresSidebar: true,
		Handler:         shortcutNewConversation,
	},
	{
		Key:         keys.CtrlN,
		DisplayKey:  "ctrl-n",
		Description: "Start a new conversation",
		Category:    CategoryChat,
		Handler:     shortcutNewConversation,
		Condition:   func(m *Model) bool { return m.chat.IsFocused() },
	},
	{
		Key:             "d",
		Description:     "Delete selected conversation",
		Category:        CategoryConversations,
		RequiresSidebar: true,
		RequiresLogin:   true,
		Handler:         shortcutDeleteConversation,
		Condition:       func(m *Model) bool { return m.sidebar.Len() > 0 },
	},
	{
		Key:             "r",
		Description:     "Refresh conversation list",
		Category:        CategoryConversations,
		RequiresSidebar: true,
		RequiresLogin:   true,
		Handler:         shortcutRefresh,
	},

	// Chat
	{
		Key:         keys.CtrlO,
		DisplayKey:  "ctrl-o",
		Description: "Attach files",
		Category:    CategoryChat,
		Handler:     shortcutAttach,
	},
	{
		Key:         keys.CtrlX,
		DisplayKey:  "ctrl-x",
		Description: "Remove last attached file",
		Category:    CategoryChat,
		Handler:     shortcutUnstage,
		Condition:   func(m *Model) bool { return len(m.session.Staged()) > 0 },
	},
	{
		Key:         keys.CtrlY,
		DisplayKey:  "ctrl-y",
		Description: "Copy last reply",
		Category:    CategoryChat,
		Handler:     shortcutCopyReply,
	},
	{
		Key:         keys.CtrlK,
		DisplayKey:  "ctrl-k",
		Description: "Copy last code block",
		Category:    CategoryChat,
		Handler:     shortcutCopyCode,
	},

	// Account
	{
		Key:             "u",
		Description:     "Upgrade plan",
		Category:        CategoryAccount,
		RequiresSidebar: true,
		RequiresLogin:   true,
		Handler:         shortcutUpgrade,
	},
	{
		Key:             "p",
		Description:     "Show payment status",
		Category:        CategoryAccount,
		RequiresSidebar: true,
		Handler:         shortcutPaymentStatus,
		Condition: func(m *Model) bool {
			_, ok := m.billing.Attempt()
			return ok || m.billing.Initializing()
		},
	},
	{
		Key:             "l",
		Description:     "Sign in or out",
		Category:        CategoryAccount,
		RequiresSidebar: true,
		Handler:         shortcutAccount,
	},
	{
		Key:             "b",
		Description:     "Toggle desktop notifications",
		Category:        CategoryAccount,
		RequiresSidebar: true,
		Handler:         shortcutToggleNotifications,
	},

	// General
	// "?" (help) is handled in ExecuteShortcut since it renders this registry.
	{
		Key:             "q",
		Description:     "Quit application",
		Category:        CategoryGeneral,
		RequiresSidebar: true,
		Handler:         shortcutQuit,
	},
}

var helpShortcut = Shortcut{
	Key:             "?",
	Description:     "Show this help",
	Category:        CategoryGeneral,
	RequiresSidebar: true,
}

// DisplayOnlyShortcuts are shown in help but not executable from the help modal.
var DisplayOnlyShortcuts = []Shortcut{
	{DisplayKey: "↑/↓ or j/k", Description: "Navigate conversation list", Category: CategoryNavigation},
	{DisplayKey: "PgUp/PgDn", Description: "Scroll chat", Category: CategoryNavigation},
	{DisplayKey: "Enter", Description: "Open conversation / Send message", Category: CategoryNavigation},
	{DisplayKey: "Esc", Description: "Dismiss error / Back to sidebar", Category: CategoryNavigation},

	{DisplayKey: "shift-enter", Description: "New line", Category: CategoryChat},
	{DisplayKey: "ctrl-v", Description: "Paste image", Category: CategoryChat},
}

// isShortcutApplicable checks if a shortcut is applicable given the current model state.
func (m *Model) isShortcutApplicable(s Shortcut) bool {
	if s.RequiresSidebar && m.chat.IsFocused() {
		return false
	}
	if s.RequiresLogin && !m.config.IsLoggedIn() {
		return false
	}
	if s.Condition != nil && !s.Condition(m) {
		return false
	}
	return true
}

// ExecuteShortcut finds and executes a shortcut by key.
// Returns (model, cmd, true) if the shortcut was found and executed.
// Returns (model, nil, false) if the shortcut was not found or guards failed.
func (m *Model) ExecuteShortcut(key string) (tea.Model, tea.Cmd, bool) {
	log := logger.WithComponent("shortcuts")

	if key == helpShortcut.Key {
		if m.chat.IsFocused() {
			return m, nil, false
		}
		result, cmd := shortcutHelp(m)
		return result, cmd, true
	}

	for _, s := range ShortcutRegistry {
		if s.Key != key {
			continue
		}
		if !m.isShortcutApplicable(s) {
			log.Debug("guard failed", "key", key, "chatFocused", m.chat.IsFocused())
			continue
		}
		log.Debug("executing shortcut", "key", key)
		result, cmd := s.Handler(m)
		return result, cmd, true
	}
	return m, nil, false
}

// getApplicableHelpSections builds help modal sections from the shortcuts
// that apply in the current state.
func (m *Model) getApplicableHelpSections() []modals.HelpSection {
	categories := make(map[string][]modals.HelpShortcut)
	seen := make(map[string]bool)

	add := func(s Shortcut) {
		displayKey := s.DisplayKey
		if displayKey == "" {
			displayKey = s.Key
		}
		if seen[s.Category+displayKey] {
			return
		}
		seen[s.Category+displayKey] = true
		categories[s.Category] = append(categories[s.Category], modals.HelpShortcut{
			Key:  displayKey,
			Desc: s.Description,
		})
	}

	for _, s := range ShortcutRegistry {
		if m.isShortcutApplicable(s) {
			add(s)
		}
	}
	if m.isShortcutApplicable(helpShortcut) {
		add(helpShortcut)
	}
	for _, s := range DisplayOnlyShortcuts {
		if s.Category == CategoryChat && !m.chat.IsFocused() {
			continue
		}
		add(s)
	}

	var sections []modals.HelpSection
	for _, cat := range categoryOrder {
		if len(categories[cat]) > 0 {
			sections = append(sections, modals.HelpSection{Title: cat, Shortcuts: categories[cat]})
		}
	}
	return sections
}

// helpKeyFor maps a help entry back to the registry key it runs.
func helpKeyFor(displayKey string) (string, bool) {
	for _, s := range append(ShortcutRegistry, helpShortcut) {
		if s.Key == displayKey || (s.DisplayKey != "" && s.DisplayKey == displayKey) {
			return s.Key, true
		}
	}
	return "", false
}

func shortcutToggleFocus(m *Model) (tea.Model, tea.Cmd) {
	m.toggleFocus()
	return m, nil
}

func shortcutJumpToBottom(m *Model) (tea.Model, tea.Cmd) {
	m.session.ScrollToBottom()
	m.chat.JumpToBottom()
	return m, nil
}

func shortcutNewConversation(m *Model) (tea.Model, tea.Cmd) {
	m.session.StartNewConversation()
	m.config.SetLastConversationID("")
	m.chat.ClearInput()
	m.syncChat()
	m.setFocus(FocusChat)
	return m, m.saveConfigOrFlash()
}

func shortcutDeleteConversation(m *Model) (tea.Model, tea.Cmd) {
	conv, ok := m.sidebar.Selected()
	if !ok {
		return m, nil
	}
	m.modal.Show(modals.NewConfirmDeleteState(conv.ID, conv.Title))
	return m, nil
}

func shortcutRefresh(m *Model) (tea.Model, tea.Cmd) {
	return m, tea.Batch(m.session.RefreshConversations(), m.fetchProfile())
}

func shortcutAttach(m *Model) (tea.Model, tea.Cmd) {
	m.modal.Show(modals.NewAttachState())
	return m, nil
}

func shortcutUnstage(m *Model) (tea.Model, tea.Cmd) {
	staged := m.session.Staged()
	if len(staged) == 0 {
		return m, nil
	}
	if err := m.session.Unstage(len(staged) - 1); err != nil {
		return m, m.ShowFlashError(err.Error())
	}
	m.syncChat()
	return m, m.ShowFlashInfo("Removed " + staged[len(staged)-1].Name)
}

func shortcutCopyReply(m *Model) (tea.Model, tea.Cmd) {
	reply, ok := m.session.LastReply()
	if !ok {
		return m, m.ShowFlashInfo("No reply to copy yet")
	}
	return m, m.copyToClipboard(reply.Content, "Copied reply to clipboard")
}

func shortcutCopyCode(m *Model) (tea.Model, tea.Cmd) {
	reply, ok := m.session.LastReply()
	if !ok {
		return m, m.ShowFlashInfo("No reply to copy yet")
	}
	code, ok := ui.LastCodeBlock(reply.Content)
	if !ok {
		return m, m.ShowFlashInfo("The last reply has no code block")
	}
	return m, m.copyToClipboard(code, "Copied code block to clipboard")
}

func (m *Model) copyToClipboard(text, success string) tea.Cmd {
	if err := clipboard.WriteText(text); err != nil {
		logger.WithComponent("app").Warn("clipboard write failed", "error", err)
		return m.ShowFlashError("Clipboard unavailable")
	}
	return m.ShowFlashSuccess(success)
}

func shortcutUpgrade(m *Model) (tea.Model, tea.Cmd) {
	if m.user != nil && !m.user.IsFree() {
		return m, m.ShowFlashInfo(fmt.Sprintf("You are already on the %s plan", m.user.Role))
	}
	m.modal.Show(modals.NewPlanSelectState(m.billing.Plans()))
	return m, m.billing.LoadPlans()
}

func shortcutPaymentStatus(m *Model) (tea.Model, tea.Cmd) {
	m.showPaymentStatus("")
	return m, nil
}

func shortcutAccount(m *Model) (tea.Model, tea.Cmd) {
	if m.config.IsLoggedIn() {
		return m, m.logout()
	}
	m.showLogin()
	return m, nil
}

func shortcutToggleNotifications(m *Model) (tea.Model, tea.Cmd) {
	enabled := !m.config.GetNotificationsEnabled()
	m.config.SetNotificationsEnabled(enabled)
	if cmd := m.saveConfigOrFlash(); cmd != nil {
		return m, cmd
	}
	if enabled {
		return m, m.ShowFlashInfo("Desktop notifications on")
	}
	return m, m.ShowFlashInfo("Desktop notifications off")
}

func shortcutHelp(m *Model) (tea.Model, tea.Cmd) {
	state := modals.NewHelpState(m.getApplicableHelpSections())
	m.modal.Show(state)
	return m, nil
}

func shortcutQuit(m *Model) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}
