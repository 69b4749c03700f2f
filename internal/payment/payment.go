// Package payment runs the plan upgrade flow: plan selection, payment
// initialization, bounded status polling and verification.
//
// Verification can also arrive from outside the poll loop (the manual verify
// action, the gateway checkout, or a callback URL carrying the reference).
// Whichever path confirms the payment first wins; later confirmations of the
// same reference are ignored.
package payment

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/dustin/go-humanize"

	"github.com/zhubert/parley/internal/api"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
)

const (
	PollInterval   = 5 * time.Second
	MaxPolls       = 60
	NavigateDelay  = 2 * time.Second
	requestTimeout = 30 * time.Second

	defaultSuccessMessage = "Payment successful! Upgrading your account..."
	defaultInitFailure    = "Failed to initialize payment"
	defaultVerifyFailure  = "Payment verification failed"
	notConfirmedMessage   = "Payment not confirmed yet"
	timeoutMessage        = `Payment verification timed out. If you completed payment, use "Verify payment" or check back later.`
)

// Status is the lifecycle state of a payment attempt.
type Status int

const (
	StatusNoAttempt Status = iota
	StatusInitialized
	StatusPolling
	StatusSucceeded
	StatusTimedOut
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNoAttempt:
		return "NoAttempt"
	case StatusInitialized:
		return "Initialized"
	case StatusPolling:
		return "Polling"
	case StatusSucceeded:
		return "Succeeded"
	case StatusTimedOut:
		return "TimedOut"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Source identifies which path asked for a verification.
type Source int

const (
	SourcePoll     Source = iota // the poll loop
	SourceManual                 // the "verify payment" action
	SourceGateway                // the user came back from the gateway checkout
	SourceCallback               // a callback URL carried the reference
)

func (s Source) String() string {
	switch s {
	case SourcePoll:
		return "poll"
	case SourceManual:
		return "manual"
	case SourceGateway:
		return "gateway"
	case SourceCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Attempt is one payment for one plan.
type Attempt struct {
	Reference        string
	PlanKey          string
	AmountMinorUnits int64
	AuthorizationURL string
	PollCount        int
	Status           Status
}

// Tick records one poll. It returns false, without counting, when polling is
// not active or all polls have been used.
func (a *Attempt) Tick() bool {
	if a.Status != StatusPolling || a.PollCount >= MaxPolls {
		return false
	}
	a.PollCount++
	return true
}

// Advance applies the outcome of a poll and returns the new status. A
// non-success outcome on the last allowed poll times the attempt out.
func (a *Attempt) Advance(confirmed bool) Status {
	if a.Status != StatusPolling {
		return a.Status
	}
	switch {
	case confirmed:
		a.Status = StatusSucceeded
	case a.PollCount >= MaxPolls:
		a.Status = StatusTimedOut
	}
	return a.Status
}

// Backend is the part of the transport client the controller needs.
type Backend interface {
	Plans(ctx context.Context) (map[string]api.Plan, error)
	InitializePayment(ctx context.Context, planKey string) (*api.PaymentInit, error)
	VerifyPayment(ctx context.Context, reference string) (*api.Verification, error)
	Me(ctx context.Context) (*api.User, error)
}

// PlansMsg carries the fetched plan catalogue.
type PlansMsg struct {
	Plans map[string]api.Plan
	Err   error
}

// InitializedMsg carries the outcome of a payment initialization.
type InitializedMsg struct {
	Gen     uint64
	PlanKey string
	Init    *api.PaymentInit
	Err     error
}

// PollTickMsg fires one poll of the active attempt.
type PollTickMsg struct {
	Gen uint64
}

// VerifyResultMsg carries the outcome of a verification.
type VerifyResultMsg struct {
	Gen       uint64
	Reference string
	Source    Source
	Result    *api.Verification
	Err       error
}

// ProfileMsg carries the refreshed user profile after an upgrade.
type ProfileMsg struct {
	User *api.User
	Err  error
}

// NavigateMsg asks the app to leave the payment view after a confirmed
// payment. It is only honoured while it is the controller's pending
// navigation; a newer plan selection or Leave makes it stale.
type NavigateMsg struct {
	Gen       uint64
	Reference string
}

// Controller is the payment state machine.
type Controller struct {
	backend Backend

	plans        map[string]api.Plan
	attempt      *Attempt
	initializing bool
	gen          uint64

	confirmed map[string]bool
	navigate  *NavigateMsg
	banner    string
	success   string
	user      *api.User

	stops int // number of times an active poll loop was stopped

	tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// New creates a controller with no attempt.
func New(backend Backend) *Controller {
	return &Controller{
		backend:   backend,
		confirmed: make(map[string]bool),
		tick:      tea.Tick,
	}
}

// LoadPlans fetches the plan catalogue.
func (c *Controller) LoadPlans() tea.Cmd {
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		plans, err := backend.Plans(ctx)
		return PlansMsg{Plans: plans, Err: err}
	}
}

// SelectPlan supersedes any current attempt and initializes a payment for
// the plan.
func (c *Controller) SelectPlan(key string) tea.Cmd {
	c.stopPolling()
	c.attempt = nil
	c.navigate = nil
	c.initializing = true
	c.banner = ""
	c.success = ""

	logger.WithComponent("payment").Info("initializing payment", "plan", key)

	gen, backend := c.gen, c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		pi, err := backend.InitializePayment(ctx, key)
		return InitializedMsg{Gen: gen, PlanKey: key, Init: pi, Err: err}
	}
}

// Verify checks a reference outside the poll loop.
func (c *Controller) Verify(reference string, source Source) tea.Cmd {
	if reference == "" {
		return nil
	}
	if c.confirmed[reference] {
		logger.WithComponent("payment").Debug("reference already confirmed", "reference", reference, "source", source)
		return nil
	}
	return c.verifyCmd(c.gen, reference, source)
}

// Leave abandons the current attempt, e.g. when the user navigates away.
func (c *Controller) Leave() {
	c.stopPolling()
	c.attempt = nil
	c.navigate = nil
	c.initializing = false
}

func (c *Controller) verifyCmd(gen uint64, reference string, source Source) tea.Cmd {
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := backend.VerifyPayment(ctx, reference)
		return VerifyResultMsg{Gen: gen, Reference: reference, Source: source, Result: result, Err: err}
	}
}

func (c *Controller) pollTick(gen uint64) tea.Cmd {
	return c.tick(PollInterval, func(time.Time) tea.Msg {
		return PollTickMsg{Gen: gen}
	})
}

// stopPolling invalidates every pending tick and poll result.
func (c *Controller) stopPolling() {
	if c.attempt != nil && c.attempt.Status == StatusPolling {
		c.stops++
		logger.WithComponent("payment").Debug("polling stopped", "reference", c.attempt.Reference, "polls", c.attempt.PollCount)
	}
	c.gen++
}

// Update applies an asynchronous result.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PlansMsg:
		c.handlePlans(msg)
	case InitializedMsg:
		return c.handleInitialized(msg)
	case PollTickMsg:
		return c.handlePollTick(msg)
	case VerifyResultMsg:
		if msg.Source == SourcePoll {
			return c.handlePollResult(msg)
		}
		return c.handleVerifyResult(msg)
	case ProfileMsg:
		c.handleProfile(msg)
	case NavigateMsg:
		if !c.IsPendingNavigation(msg) {
			logger.WithComponent("payment").Debug("dropping stale navigation", "reference", msg.Reference)
			return nil
		}
		c.Leave()
	}
	return nil
}

func (c *Controller) handlePlans(msg PlansMsg) {
	if msg.Err != nil {
		logger.WithComponent("payment").Warn("failed to load plans", "error", msg.Err)
		c.banner = "Failed to load plans: " + api.Reason(msg.Err)
		return
	}
	c.plans = msg.Plans
}

func (c *Controller) handleInitialized(msg InitializedMsg) tea.Cmd {
	log := logger.WithComponent("payment")
	if msg.Gen != c.gen {
		log.Debug("dropping stale initialization", "plan", msg.PlanKey)
		return nil
	}
	c.initializing = false

	if msg.Err != nil {
		log.Warn("payment initialization failed", "plan", msg.PlanKey, "error", msg.Err)
		c.attempt = &Attempt{PlanKey: msg.PlanKey, Status: StatusFailed}
		c.banner = failureReason(msg.Err, defaultInitFailure)
		return nil
	}

	c.attempt = &Attempt{
		Reference:        msg.Init.Reference,
		PlanKey:          msg.PlanKey,
		AmountMinorUnits: c.plans[msg.PlanKey].Price,
		AuthorizationURL: msg.Init.AuthorizationURL,
		Status:           StatusInitialized,
	}
	log.Info("payment initialized, polling", "reference", msg.Init.Reference)

	c.attempt.Status = StatusPolling
	return c.pollTick(c.gen)
}

func (c *Controller) handlePollTick(msg PollTickMsg) tea.Cmd {
	if msg.Gen != c.gen || c.attempt == nil || !c.attempt.Tick() {
		return nil
	}
	return c.verifyCmd(c.gen, c.attempt.Reference, SourcePoll)
}

func (c *Controller) handlePollResult(msg VerifyResultMsg) tea.Cmd {
	log := logger.WithComponent("payment")
	if msg.Gen != c.gen || c.attempt == nil || c.attempt.Reference != msg.Reference || c.attempt.Status != StatusPolling {
		log.Debug("dropping stale poll result", "reference", msg.Reference)
		return nil
	}

	confirmed := msg.Err == nil && msg.Result != nil && msg.Result.Succeeded()
	if confirmed {
		return c.succeed(msg.Reference, msg.Result)
	}

	if msg.Err != nil {
		log.Debug("payment not confirmed yet", "poll", c.attempt.PollCount, "error", msg.Err)
	}
	if c.attempt.PollCount >= MaxPolls {
		c.stopPolling()
		c.attempt.Advance(false)
		c.banner = timeoutMessage
		log.Warn("payment polling timed out", "error", perrors.PaymentTimeout(msg.Reference, c.attempt.PollCount))
		return nil
	}
	return c.pollTick(c.gen)
}

func (c *Controller) handleVerifyResult(msg VerifyResultMsg) tea.Cmd {
	log := logger.WithComponent("payment")
	if c.confirmed[msg.Reference] {
		log.Debug("ignoring repeated verification", "reference", msg.Reference, "source", msg.Source)
		return nil
	}

	if msg.Err != nil {
		log.Warn("verification failed", "reference", msg.Reference, "source", msg.Source, "error", msg.Err)
		c.banner = failureReason(msg.Err, defaultVerifyFailure)
		// An active attempt keeps polling; a failed side check must not end it.
		if c.attempt == nil {
			c.attempt = &Attempt{Reference: msg.Reference, Status: StatusFailed}
		}
		return nil
	}

	if msg.Result == nil || !msg.Result.Succeeded() {
		c.banner = notConfirmedMessage
		if msg.Result != nil && msg.Result.Message != "" {
			c.banner = msg.Result.Message
		}
		return nil
	}
	return c.succeed(msg.Reference, msg.Result)
}

// succeed finishes the flow for a confirmed reference exactly once.
func (c *Controller) succeed(reference string, result *api.Verification) tea.Cmd {
	if c.confirmed[reference] {
		return nil
	}
	c.confirmed[reference] = true

	c.stopPolling()
	if c.attempt == nil || c.attempt.Reference != reference {
		c.attempt = &Attempt{Reference: reference}
	}
	c.attempt.Status = StatusSucceeded
	c.initializing = false
	c.banner = ""
	c.success = defaultSuccessMessage
	if result.Message != "" {
		c.success = result.Message
	}

	logger.WithComponent("payment").Info("payment confirmed", "reference", reference)

	backend := c.backend
	refresh := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		user, err := backend.Me(ctx)
		return ProfileMsg{User: user, Err: err}
	}
	nav := NavigateMsg{Gen: c.gen, Reference: reference}
	c.navigate = &nav
	navigate := c.tick(NavigateDelay, func(time.Time) tea.Msg {
		return nav
	})
	return tea.Batch(refresh, navigate)
}

func (c *Controller) handleProfile(msg ProfileMsg) {
	if msg.Err != nil {
		logger.WithComponent("payment").Warn("profile refresh failed", "error", msg.Err)
		return
	}
	c.user = msg.User
}

func failureReason(err error, fallback string) string {
	if api.StatusCode(err) == 0 {
		return fallback
	}
	return api.Reason(err)
}

// IsPendingNavigation reports whether msg is the navigation scheduled by the
// most recent confirmation and not yet superseded.
func (c *Controller) IsPendingNavigation(msg NavigateMsg) bool {
	return c.navigate != nil && *c.navigate == msg
}

// PendingNavigation returns the navigation scheduled by the last confirmation.
func (c *Controller) PendingNavigation() (NavigateMsg, bool) {
	if c.navigate == nil {
		return NavigateMsg{}, false
	}
	return *c.navigate, true
}

// Attempt returns a copy of the current attempt, if any.
func (c *Controller) Attempt() (Attempt, bool) {
	if c.attempt == nil {
		return Attempt{}, false
	}
	return *c.attempt, true
}

// Status returns the status of the current attempt.
func (c *Controller) Status() Status {
	if c.attempt == nil {
		return StatusNoAttempt
	}
	return c.attempt.Status
}

// Initializing reports whether a plan selection is in flight.
func (c *Controller) Initializing() bool {
	return c.initializing
}

// Banner returns the last error or timeout notice.
func (c *Controller) Banner() string {
	return c.banner
}

// SuccessMessage returns the confirmation text once a payment succeeded.
func (c *Controller) SuccessMessage() string {
	return c.success
}

// User returns the profile fetched after the last upgrade, if any.
func (c *Controller) User() *api.User {
	return c.user
}

// PlanEntry is a plan with its key.
type PlanEntry struct {
	Key string
	api.Plan
}

// Plans returns the catalogue ordered by price, then key.
func (c *Controller) Plans() []PlanEntry {
	return SortPlans(c.plans)
}

// SortPlans orders a catalogue by price, then key.
func SortPlans(plans map[string]api.Plan) []PlanEntry {
	entries := make([]PlanEntry, 0, len(plans))
	for k, p := range plans {
		entries = append(entries, PlanEntry{Key: k, Plan: p})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Price != entries[j].Price {
			return entries[i].Price < entries[j].Price
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// ReferenceFromCallback extracts the payment reference from the gateway's
// callback URL (".../payment?reference=abc"). Anything that is not such a
// URL is returned trimmed, as a bare reference.
func ReferenceFromCallback(s string) string {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return s
	}
	return u.Query().Get("reference")
}

// FormatPrice renders minor currency units as naira, e.g. 500000 -> "₦5,000".
func FormatPrice(minor int64) string {
	if minor%100 == 0 {
		return "₦" + humanize.Comma(minor/100)
	}
	return "₦" + humanize.CommafWithDigits(float64(minor)/100, 2)
}
