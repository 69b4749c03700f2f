package modals

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/zhubert/parley/internal/payment"
)

// PlanLabel renders one plan line, e.g. "Pro Monthly  ₦5,000/monthly  1,000 messages".
func PlanLabel(p payment.PlanEntry) string {
	label := fmt.Sprintf("%s  %s/%s", p.Name, payment.FormatPrice(p.Price), p.Interval)
	if p.MessageLimit > 0 {
		label += fmt.Sprintf("  %s messages", humanize.Comma(int64(p.MessageLimit)))
	}
	return label
}

// PlanSelectState lists the plans available for upgrade.
type PlanSelectState struct {
	plans    []payment.PlanEntry
	selected string
	loading  bool
	form     *huh.Form
}

func (*PlanSelectState) modalState() {}

func (s *PlanSelectState) Title() string { return "Upgrade to Pro" }

func (s *PlanSelectState) Help() string {
	if len(s.plans) == 0 {
		return "Esc: close"
	}
	return "up/down: choose plan  Enter: pay  Esc: cancel"
}

func (s *PlanSelectState) Render() string {
	muted := lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)
	body := muted.Render("No plans available.")
	switch {
	case s.loading && len(s.plans) == 0:
		body = muted.Render("Loading plans...")
	case s.form != nil:
		body = s.form.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		ModalTitleStyle.Render(s.Title()),
		body,
		ModalHelpStyle.Render(s.Help()),
	)
}

func (s *PlanSelectState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if s.form == nil {
		return s, nil
	}
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// SetPlans replaces the catalogue, keeping the current choice when it is
// still offered.
func (s *PlanSelectState) SetPlans(plans []payment.PlanEntry) {
	s.plans = plans
	s.loading = false
	if len(plans) == 0 {
		s.form = nil
		return
	}

	keep := false
	options := make([]huh.Option[string], len(plans))
	for i, p := range plans {
		options[i] = huh.NewOption(PlanLabel(p), p.Key)
		keep = keep || p.Key == s.selected
	}
	if !keep {
		s.selected = plans[0].Key
	}
	s.form = newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Options(options...).
			Value(&s.selected),
	))
}

// Selected returns the chosen plan key, or "" while no plans are loaded.
func (s *PlanSelectState) Selected() string {
	if len(s.plans) == 0 {
		return ""
	}
	return s.selected
}

// NewPlanSelectState creates the plan picker. With no plans yet it shows a
// loading line until SetPlans is called.
func NewPlanSelectState(plans []payment.PlanEntry) *PlanSelectState {
	s := &PlanSelectState{loading: len(plans) == 0}
	if len(plans) > 0 {
		s.SetPlans(plans)
	}
	return s
}

// PaymentView is the payment state the status modal shows.
type PaymentView struct {
	PlanName     string
	Attempt      payment.Attempt
	HasAttempt   bool
	Initializing bool
	Banner       string
	Success      string
}

// PaymentStatusState follows one payment attempt.
type PaymentStatusState struct {
	view PaymentView
}

func (*PaymentStatusState) modalState() {}

func (s *PaymentStatusState) Title() string { return "Payment" }

func (s *PaymentStatusState) Help() string {
	switch {
	case s.view.Success != "":
		return "Esc: close"
	case s.view.HasAttempt:
		return "v: verify  o: open in browser  c: copy link  Esc: close"
	default:
		return "Esc: close"
	}
}

func (s *PaymentStatusState) statusLine() string {
	a := s.view.Attempt
	switch {
	case s.view.Initializing:
		return "Preparing checkout..."
	case !s.view.HasAttempt:
		return "No payment in progress."
	}
	switch a.Status {
	case payment.StatusPolling:
		return fmt.Sprintf("Waiting for confirmation (check %d of %d)", a.PollCount, payment.MaxPolls)
	case payment.StatusSucceeded:
		return "Payment confirmed."
	case payment.StatusTimedOut:
		return "Stopped waiting for confirmation."
	case payment.StatusFailed:
		return "Payment failed."
	default:
		return "Checkout ready."
	}
}

func (s *PaymentStatusState) Render() string {
	label := lipgloss.NewStyle().Foreground(ColorTextMuted)
	value := lipgloss.NewStyle().Foreground(ColorText)

	parts := []string{ModalTitleStyle.Render(s.Title())}
	if s.view.PlanName != "" {
		parts = append(parts, label.Render("Plan: ")+value.Bold(true).Render(s.view.PlanName))
	}
	if s.view.HasAttempt {
		a := s.view.Attempt
		parts = append(parts,
			label.Render("Amount: ")+value.Render(payment.FormatPrice(a.AmountMinorUnits)),
			label.Render("Reference: ")+value.Render(a.Reference),
		)
		if a.AuthorizationURL != "" && a.Status != payment.StatusSucceeded {
			parts = append(parts, "",
				label.Render("Complete payment in your browser:"),
				lipgloss.NewStyle().Foreground(ColorPrimary).Underline(true).Width(ModalInputWidth).Render(a.AuthorizationURL),
			)
		}
	}
	parts = append(parts, "", value.Render(s.statusLine()))

	if s.view.Success != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true).Render("✓ "+s.view.Success))
	}
	if s.view.Banner != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorWarning).Width(ModalInputWidth).Render(strings.TrimSpace(s.view.Banner)))
	}
	parts = append(parts, ModalHelpStyle.Render(s.Help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *PaymentStatusState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, nil
}

// SetView replaces the shown payment state.
func (s *PaymentStatusState) SetView(v PaymentView) {
	s.view = v
}

// View returns the shown payment state.
func (s *PaymentStatusState) View() PaymentView {
	return s.view
}

// NewPaymentStatusState creates the payment status modal.
func NewPaymentStatusState(v PaymentView) *PaymentStatusState {
	return &PaymentStatusState{view: v}
}
