package app

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/attach"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/payment"
	"github.com/zhubert/parley/internal/ui/modals"
)

// HelpShortcutTriggeredMsg runs a shortcut chosen in the help modal.
type HelpShortcutTriggeredMsg struct {
	Key string
}

// handleModalKey routes modal key events to the appropriate handler based on modal state type.
func (m *Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch s := m.modal.State.(type) {
	case *modals.LoginState:
		return m.handleLoginModal(key, msg, s)
	case *modals.ConfirmDeleteState:
		return m.handleConfirmDeleteModal(key, msg, s)
	case *modals.AttachState:
		return m.handleAttachModal(key, msg, s)
	case *modals.PlanSelectState:
		return m.handlePlanSelectModal(key, msg, s)
	case *modals.PaymentStatusState:
		return m.handlePaymentStatusModal(key, s)
	case *modals.HelpState:
		return m.handleHelpModal(key, msg, s)
	}

	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

func (m *Model) forwardToModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

// showLogin opens the sign-in modal prefilled with the last email.
func (m *Model) showLogin() {
	m.modal.Show(modals.NewLoginState(m.config.GetServerURL(), m.config.GetUserEmail()))
}

func (m *Model) handleLoginModal(key string, msg tea.KeyPressMsg, state *modals.LoginState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape:
		m.modal.Hide()
		if !m.config.IsLoggedIn() {
			return m, m.ShowFlashInfo("Signed out. Press l in the sidebar to sign in.")
		}
		return m, nil
	case keys.Enter:
		email, password := state.Credentials()
		if email == "" || password == "" {
			m.modal.SetError("Email and password are required")
			return m, nil
		}
		m.modal.SetError("")
		return m, m.login(email, password)
	}
	return m.forwardToModal(msg)
}

func (m *Model) handleConfirmDeleteModal(key string, msg tea.KeyPressMsg, state *modals.ConfirmDeleteState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape:
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		m.modal.Hide()
		return m, m.session.DeleteConversation(state.ConversationID, state.Confirmed())
	}
	return m.forwardToModal(msg)
}

func (m *Model) handleAttachModal(key string, msg tea.KeyPressMsg, state *modals.AttachState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape:
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		paths := state.Paths()
		if len(paths) == 0 {
			m.modal.SetError("Enter at least one file path")
			return m, nil
		}

		var problems []string
		var files []attach.File
		for _, p := range paths {
			f, err := attach.Load(p)
			if err != nil {
				logger.WithComponent("app").Warn("failed to load attachment", "path", p, "error", err)
				problems = append(problems, err.Error())
				continue
			}
			files = append(files, f)
		}
		for _, r := range m.session.Stage(files...) {
			problems = append(problems, r.Message())
		}
		m.syncChat()

		if len(problems) > 0 {
			m.modal.SetError(strings.Join(problems, "\n"))
			return m, nil
		}
		m.modal.Hide()
		return m, nil
	}
	return m.forwardToModal(msg)
}

func (m *Model) handlePlanSelectModal(key string, msg tea.KeyPressMsg, state *modals.PlanSelectState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape:
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		planKey := state.Selected()
		if planKey == "" {
			return m, nil
		}
		cmd := m.billing.SelectPlan(planKey)
		m.showPaymentStatus(planKey)
		return m, cmd
	}
	return m.forwardToModal(msg)
}

// planName returns the display name of a plan key.
func (m *Model) planName(key string) string {
	for _, p := range m.billing.Plans() {
		if p.Key == key {
			return p.Name
		}
	}
	return key
}

// paymentView snapshots the payment controller for the status modal.
func (m *Model) paymentView(planKey string) modals.PaymentView {
	attempt, ok := m.billing.Attempt()
	if ok && attempt.PlanKey != "" {
		planKey = attempt.PlanKey
	}
	return modals.PaymentView{
		PlanName:     m.planName(planKey),
		Attempt:      attempt,
		HasAttempt:   ok,
		Initializing: m.billing.Initializing(),
		Banner:       m.billing.Banner(),
		Success:      m.billing.SuccessMessage(),
	}
}

func (m *Model) showPaymentStatus(planKey string) {
	m.modal.Show(modals.NewPaymentStatusState(m.paymentView(planKey)))
}

// syncPayment refreshes whichever payment modal is open.
func (m *Model) syncPayment() {
	switch s := m.modal.State.(type) {
	case *modals.PlanSelectState:
		s.SetPlans(m.billing.Plans())
		if banner := m.billing.Banner(); banner != "" {
			m.modal.SetError(banner)
		}
	case *modals.PaymentStatusState:
		planKey := ""
		if a, ok := m.billing.Attempt(); ok {
			planKey = a.PlanKey
		}
		if planKey == "" {
			planKey = s.View().PlanName
		}
		s.SetView(m.paymentView(planKey))
	}
}

func (m *Model) handlePaymentStatusModal(key string, state *modals.PaymentStatusState) (tea.Model, tea.Cmd) {
	attempt, ok := m.billing.Attempt()

	switch key {
	case keys.Escape, "q":
		// Closing the modal leaves checkout; a confirmed payment is already applied.
		if m.billing.Status() != payment.StatusSucceeded {
			m.billing.Leave()
		}
		m.modal.Hide()
		return m, nil
	case "v":
		if !ok {
			return m, nil
		}
		return m, tea.Batch(
			m.billing.Verify(attempt.Reference, payment.SourceManual),
			m.ShowFlashInfo("Checking payment..."),
		)
	case "c":
		if !ok || attempt.AuthorizationURL == "" {
			return m, nil
		}
		return m, m.copyToClipboard(attempt.AuthorizationURL, "Copied checkout link")
	case "o":
		if !ok || attempt.AuthorizationURL == "" {
			return m, nil
		}
		m.checkoutRef = attempt.Reference
		return m, openBrowser(attempt.AuthorizationURL)
	}
	return m, nil
}

func (m *Model) handleHelpModal(key string, msg tea.KeyPressMsg, state *modals.HelpState) (tea.Model, tea.Cmd) {
	if state.IsFiltering() {
		return m.forwardToModal(msg)
	}

	switch key {
	case keys.Escape, "?", "q":
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		shortcut, ok := state.Selected()
		if !ok {
			return m, nil
		}
		m.modal.Hide()
		return m, func() tea.Msg {
			return HelpShortcutTriggeredMsg{Key: shortcut.Key}
		}
	}
	return m.forwardToModal(msg)
}

// handleHelpShortcutTrigger runs a shortcut chosen in the help modal.
func (m *Model) handleHelpShortcutTrigger(displayKey string) (tea.Model, tea.Cmd) {
	key, ok := helpKeyFor(displayKey)
	if !ok {
		return m, nil
	}
	result, cmd, _ := m.ExecuteShortcut(key)
	return result, cmd
}
