package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/clipboard"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/notification"
	"github.com/zhubert/parley/internal/payment"
	"github.com/zhubert/parley/internal/ui"
	"github.com/zhubert/parley/internal/ui/modals"
)

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.FocusMsg:
		m.windowFocused = true
		return m, m.checkReturnFromCheckout()

	case tea.BlurMsg:
		m.windowFocused = false
		return m, nil

	case tea.PasteStartMsg:
		// Terminals send paste events instead of ctrl+v; an image wins over text.
		if m.focus == FocusChat && !m.modal.IsVisible() {
			if cmd, ok := m.pasteImage(); ok {
				return m, cmd
			}
		}

	case tea.KeyPressMsg:
		if result, cmd := m.handleKeyPress(msg); result != nil {
			return result, cmd
		}

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case StartupMsg:
		return m, m.handleStartup()

	case ProfileMsg:
		return m, m.handleProfile(msg)

	case LoginResultMsg:
		return m, m.handleLoginResult(msg)

	case HelpShortcutTriggeredMsg:
		return m.handleHelpShortcutTrigger(msg.Key)

	case BrowserErrorMsg:
		return m, m.ShowFlashError(msg.Error)

	case ui.FlashTickMsg:
		if m.footer.ClearIfExpired() || !m.footer.HasFlash() {
			return m, nil
		}
		return m, ui.FlashTick()

	case chat.SendResultMsg, chat.RevealTickMsg, chat.HistoryLoadedMsg, chat.ConversationsMsg, chat.DeleteResultMsg:
		return m, m.handleSessionMsg(msg)

	case payment.PlansMsg, payment.InitializedMsg, payment.PollTickMsg, payment.VerifyResultMsg, payment.ProfileMsg, payment.NavigateMsg:
		return m, m.handlePaymentMsg(msg)
	}

	// Forward remaining input to the modal or the focused panel
	if m.modal.IsVisible() {
		modal, cmd := m.modal.Update(msg)
		m.modal = modal
		return m, cmd
	}
	if m.focus == FocusChat {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleKeyPress handles all keyboard input.
// Returns (model, cmd) if the key was handled, or (nil, nil) if it should fall through
// to the focused panel for handling.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.modal.IsVisible() {
		return m.handleModalKey(msg)
	}

	if key == keys.CtrlC {
		return m, tea.Quit
	}

	if m.focus == FocusChat {
		if result, cmd, handled := m.handleChatKey(key); handled {
			return result, cmd
		}
	}

	if result, cmd, handled := m.ExecuteShortcut(key); handled {
		return result, cmd
	}

	if m.focus == FocusSidebar && key == keys.Enter {
		return m.openSelected()
	}
	return nil, nil
}

// handleChatKey handles keys that only apply while the chat panel is focused.
func (m *Model) handleChatKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case keys.Enter:
		if result, cmd, ok := m.handleSlashCommand(m.chat.Input()); ok {
			return result, cmd, true
		}
		return m, m.send(), true
	case keys.ShiftEnter, keys.AltEnter:
		m.chat.InsertInput("\n")
		return m, nil, true
	case keys.CtrlV:
		cmd, _ := m.pasteImage()
		return m, cmd, true
	case keys.Escape:
		if m.session.Banner() != "" {
			m.session.DismissBanner()
			m.syncChat()
			return m, nil, true
		}
		m.setFocus(FocusSidebar)
		return m, nil, true
	}
	return m, nil, false
}

// send submits the chat input.
func (m *Model) send() tea.Cmd {
	if !m.config.IsLoggedIn() {
		m.showLogin()
		return nil
	}

	cmd, err := m.session.Send(m.chat.Input())
	if err != nil {
		m.syncChat()
		return m.flashSendError(err)
	}
	m.chat.ClearInput()
	m.syncChat()
	return cmd
}

// openSelected loads the highlighted conversation and focuses the chat.
func (m *Model) openSelected() (tea.Model, tea.Cmd) {
	conv, ok := m.sidebar.Selected()
	if !ok {
		return m, nil
	}
	m.setFocus(FocusChat)
	if conv.ID == m.session.ConversationID() && !m.session.Loading() {
		return m, nil
	}
	cmd := m.session.LoadConversation(conv.ID)
	m.syncChat()
	return m, cmd
}

// pasteImage stages a clipboard image. ok is false when the clipboard
// holds no image so a text paste can proceed.
func (m *Model) pasteImage() (tea.Cmd, bool) {
	log := logger.WithComponent("app")
	img, err := clipboard.ReadImage()
	if err != nil {
		log.Warn("failed to read clipboard image", "error", err)
		return m.ShowFlashError("Could not read clipboard image"), true
	}
	if img == nil {
		return nil, false
	}
	if err := img.Validate(); err != nil {
		return m.ShowFlashError(err.Error()), true
	}

	file := img.File(time.Now())
	if rejected := m.session.Stage(file); len(rejected) > 0 {
		return m.flashRejected(rejected), true
	}
	m.syncChat()
	log.Info("staged pasted image", "name", file.Name, "bytes", file.Size)
	return m.ShowFlashSuccess("Attached " + file.Name), true
}

// handleSessionMsg applies a chat controller result and reacts to it.
func (m *Model) handleSessionMsg(msg tea.Msg) tea.Cmd {
	cmds := []tea.Cmd{m.session.Update(msg)}

	switch msg := msg.(type) {
	case chat.SendResultMsg:
		if msg.Err != nil {
			cmds = append(cmds, m.handleRequestError(msg.Err))
			break
		}
		// usage counters moved
		cmds = append(cmds, m.fetchProfile())
		cmds = append(cmds, m.rememberConversation())
	case chat.HistoryLoadedMsg:
		if msg.Err != nil {
			if api.StatusCode(msg.Err) == 404 && msg.ConversationID == m.config.GetLastConversationID() {
				m.config.SetLastConversationID("")
				cmds = append(cmds, m.saveConfigOrFlash())
			}
			cmds = append(cmds, m.handleRequestError(msg.Err))
			break
		}
		cmds = append(cmds, m.rememberConversation())
	case chat.DeleteResultMsg:
		if msg.Err == nil && msg.ConversationID == m.config.GetLastConversationID() {
			m.config.SetLastConversationID("")
			cmds = append(cmds, m.saveConfigOrFlash())
		}
	}

	m.syncChat()
	cmds = append(cmds, m.notifyFinishedReplies())
	return tea.Batch(cmds...)
}

// handleRequestError reacts to failures that concern the account rather
// than the conversation.
func (m *Model) handleRequestError(err error) tea.Cmd {
	switch api.StatusCode(err) {
	case 401:
		m.client.ClearToken()
		m.config.ClearCredentials()
		m.showLogin()
		m.modal.SetError("Your session has expired. Sign in again.")
		return m.saveConfigOrFlash()
	case 402, 403, 429:
		if m.user != nil && m.user.IsFree() {
			return m.ShowFlashWarning("Message limit reached. Press u in the sidebar to upgrade.")
		}
	}
	return nil
}

// rememberConversation persists the active conversation for the next start.
func (m *Model) rememberConversation() tea.Cmd {
	id := m.session.ConversationID()
	if id == "" || id == m.config.GetLastConversationID() {
		return nil
	}
	m.config.SetLastConversationID(id)
	return m.saveConfigOrFlash()
}

// notifyFinishedReplies sends a desktop notification for replies that
// finished while the terminal was in the background.
func (m *Model) notifyFinishedReplies() tea.Cmd {
	if len(m.finished) == 0 {
		return nil
	}
	m.finished = nil
	if m.windowFocused || !m.config.GetNotificationsEnabled() {
		return nil
	}
	title := m.activeTitle()
	return func() tea.Msg {
		_ = notification.ReplyReady(title)
		return nil
	}
}

// checkReturnFromCheckout verifies the attempt whose checkout was opened in
// the browser, so a payment finished there is picked up without waiting for
// the next poll.
func (m *Model) checkReturnFromCheckout() tea.Cmd {
	ref := m.checkoutRef
	m.checkoutRef = ""
	if ref == "" {
		return nil
	}
	a, ok := m.billing.Attempt()
	if !ok || a.Reference != ref || a.Status != payment.StatusPolling {
		return nil
	}
	return m.billing.Verify(ref, payment.SourceGateway)
}

// handlePaymentMsg applies a payment controller result and reacts to it.
func (m *Model) handlePaymentMsg(msg tea.Msg) tea.Cmd {
	// the attempt is gone once the controller sees NavigateMsg
	var planName string
	if a, ok := m.billing.Attempt(); ok {
		planName = m.planName(a.PlanKey)
	}

	if nav, ok := msg.(payment.NavigateMsg); ok && !m.billing.IsPendingNavigation(nav) {
		return m.billing.Update(msg)
	}

	cmds := []tea.Cmd{m.billing.Update(msg)}

	switch msg := msg.(type) {
	case payment.ProfileMsg:
		if msg.Err == nil && msg.User != nil {
			m.user = msg.User
			m.header.SetUser(m.user)
		}
	case payment.NavigateMsg:
		if _, ok := m.modal.State.(*modals.PaymentStatusState); ok {
			m.modal.Hide()
		}
		cmds = append(cmds, m.ShowFlashSuccess("Upgrade complete"))
		if m.config.GetNotificationsEnabled() {
			cmds = append(cmds, func() tea.Msg {
				_ = notification.PaymentConfirmed(planName)
				return nil
			})
		}
	}

	m.syncPayment()
	return tea.Batch(cmds...)
}
