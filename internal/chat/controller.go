// Package chat owns a chat session: its history, the active conversation and
// the send / reveal lifecycle.
//
// The controller is driven by the Bubble Tea loop. Every operation mutates
// state synchronously and returns a tea.Cmd for the asynchronous part; the
// result comes back through Update. Results carry the generation they were
// started under, and anything from an older generation is dropped.
package chat

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/attach"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/reveal"
	"github.com/zhubert/parley/internal/scroll"
)

const defaultRequestTimeout = 2 * time.Minute

// State is the session lifecycle state.
type State int

const (
	StateIdle       State = iota // Ready to send
	StateSending                 // Request in flight
	StateStreaming               // Reply received, being revealed
	StateErrorShown              // Transport failure being recorded
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSending:
		return "Sending"
	case StateStreaming:
		return "Streaming"
	case StateErrorShown:
		return "ErrorShown"
	default:
		return "Unknown"
	}
}

// Backend is the part of the transport client the controller needs.
type Backend interface {
	ListConversations(ctx context.Context) ([]api.ConversationSummary, error)
	History(ctx context.Context, conversationID string) ([]api.Turn, error)
	Send(ctx context.Context, req api.SendRequest) (*api.SendResponse, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}

// Options tunes a Controller. Zero values use defaults.
type Options struct {
	RevealInterval  time.Duration
	RevealChunkSize int
	ScrollThreshold int
	RequestTimeout  time.Duration
}

// SendResultMsg carries the outcome of a send.
type SendResultMsg struct {
	Gen  uint64
	Resp *api.SendResponse
	Err  error
}

// RevealTickMsg advances the active reveal by one step.
type RevealTickMsg struct {
	Gen uint64
}

// HistoryLoadedMsg carries a fetched conversation history.
type HistoryLoadedMsg struct {
	Gen            uint64
	ConversationID string
	Turns          []api.Turn
	Err            error
}

// ConversationsMsg carries a refreshed conversation list.
type ConversationsMsg struct {
	Seq           uint64
	Conversations []api.ConversationSummary
	Err           error
}

// DeleteResultMsg carries the outcome of a conversation delete.
type DeleteResultMsg struct {
	ConversationID string
	Err            error
}

// Controller is the session state machine.
type Controller struct {
	backend Backend
	opts    Options

	state          State
	history        []Message
	conversationID string
	conversations  []api.ConversationSummary

	stager  *attach.Stager
	cursor  *reveal.Cursor
	tracker *scroll.Tracker

	gen     uint64 // bumped whenever pending work must be abandoned
	listSeq uint64
	loading bool
	banner  string

	now func() time.Time

	// OnStateChange, if set, is called after every state transition.
	OnStateChange func(from, to State)
	// OnReply, if set, is called with each assistant reply once it is fully
	// revealed.
	OnReply func(Message)
}

// New creates an idle controller with no conversation.
func New(backend Backend, opts Options) *Controller {
	if opts.RevealInterval <= 0 {
		opts.RevealInterval = reveal.DefaultInterval
	}
	if opts.RevealChunkSize <= 0 {
		opts.RevealChunkSize = reveal.DefaultChunkSize
	}
	if opts.ScrollThreshold <= 0 {
		opts.ScrollThreshold = scroll.LineThreshold
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	return &Controller{
		backend: backend,
		opts:    opts,
		stager:  attach.NewStager(),
		tracker: scroll.New(opts.ScrollThreshold),
		now:     time.Now,
	}
}

func (c *Controller) setState(to State) {
	from := c.state
	if from == to {
		return
	}
	logger.WithComponent("chat").Debug("state transition", "from", from, "to", to, "conversation", c.conversationID)
	c.state = to
	if c.OnStateChange != nil {
		c.OnStateChange(from, to)
	}
}

// Send appends a user message and starts a request for the reply. It fails
// without changing anything when the session is busy or when there is
// neither text nor a staged file. A send during a history load is also
// recorded as an error message.
func (c *Controller) Send(text string) (tea.Cmd, error) {
	text = strings.TrimSpace(text)

	if c.loading {
		c.appendError("A conversation is still loading. Try again in a moment.")
		return nil, perrors.SessionBusy("loading history")
	}
	if c.state != StateIdle {
		return nil, perrors.SessionBusy(c.state.String())
	}
	if text == "" && c.stager.Len() == 0 {
		return nil, perrors.EmptyMessage()
	}

	files := c.stager.Files()
	c.history = append(c.history, Message{
		Role:      RoleUser,
		Content:   text,
		Files:     c.stager.Refs(),
		Timestamp: c.now(),
	})
	c.stager.Clear()
	c.banner = ""
	c.tracker.Pin()

	c.gen++
	c.setState(StateSending)

	logger.WithConversation(c.conversationID).Info("sending message", "chars", len(text), "files", len(files))
	return c.sendCmd(c.gen, api.SendRequest{
		Message:        text,
		ConversationID: c.conversationID,
		Files:          files,
	}), nil
}

func (c *Controller) sendCmd(gen uint64, req api.SendRequest) tea.Cmd {
	backend, timeout := c.backend, c.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := backend.Send(ctx, req)
		return SendResultMsg{Gen: gen, Resp: resp, Err: err}
	}
}

func (c *Controller) revealTick(gen uint64) tea.Cmd {
	return tea.Tick(c.opts.RevealInterval, func(time.Time) tea.Msg {
		return RevealTickMsg{Gen: gen}
	})
}

// Update applies an asynchronous result to the session.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SendResultMsg:
		return c.handleSendResult(msg)
	case RevealTickMsg:
		return c.handleRevealTick(msg)
	case HistoryLoadedMsg:
		c.handleHistoryLoaded(msg)
	case ConversationsMsg:
		c.handleConversations(msg)
	case DeleteResultMsg:
		return c.handleDeleteResult(msg)
	}
	return nil
}

func (c *Controller) handleSendResult(msg SendResultMsg) tea.Cmd {
	log := logger.WithComponent("chat")
	if msg.Gen != c.gen || c.state != StateSending {
		log.Debug("dropping stale send result", "gen", msg.Gen, "current", c.gen)
		return nil
	}

	if msg.Err != nil {
		reason := api.Reason(msg.Err)
		log.Warn("send failed", "error", msg.Err)
		c.setState(StateErrorShown)
		c.appendError(reason)
		c.setState(StateIdle)
		return nil
	}

	var cmds []tea.Cmd
	if c.conversationID == "" && msg.Resp.ConversationID != "" {
		c.conversationID = msg.Resp.ConversationID
		cmds = append(cmds, c.RefreshConversations())
	}

	c.cursor = reveal.NewCursor(msg.Resp.Reply, c.opts.RevealChunkSize)
	c.setState(StateStreaming)
	cmds = append(cmds, c.revealTick(c.gen))
	return tea.Batch(cmds...)
}

func (c *Controller) handleRevealTick(msg RevealTickMsg) tea.Cmd {
	if msg.Gen != c.gen || c.state != StateStreaming || c.cursor == nil {
		return nil
	}
	if _, done := c.cursor.Step(); done {
		c.completeReveal()
		return nil
	}
	return c.revealTick(c.gen)
}

// completeReveal commits the fully revealed reply to history.
func (c *Controller) completeReveal() {
	reply := Message{
		Role:      RoleAssistant,
		Content:   c.cursor.FullText,
		Timestamp: c.now(),
	}
	c.history = append(c.history, reply)
	c.cursor = nil
	c.setState(StateIdle)

	if c.OnReply != nil {
		c.OnReply(reply)
	}
}

func (c *Controller) appendError(reason string) {
	c.banner = reason
	c.history = append(c.history, Message{
		Role:      RoleAssistant,
		Content:   ErrorPrefix + reason,
		Timestamp: c.now(),
		IsError:   true,
	})
}

// StartNewConversation abandons all pending work and clears the session.
func (c *Controller) StartNewConversation() {
	c.gen++
	c.conversationID = ""
	c.history = nil
	c.stager.Clear()
	c.cursor = nil
	c.loading = false
	c.banner = ""
	c.tracker.ScrollToBottom()
	c.setState(StateIdle)
}

// Reset clears the session and the conversation list, e.g. on sign out.
// List refreshes still in flight are dropped.
func (c *Controller) Reset() {
	c.StartNewConversation()
	c.conversations = nil
	c.listSeq++
}

// LoadConversation abandons pending work and fetches a conversation's
// history. Sends are refused until the load finishes.
func (c *Controller) LoadConversation(id string) tea.Cmd {
	c.gen++
	c.cursor = nil
	c.loading = true
	c.setState(StateIdle)

	gen, backend, timeout := c.gen, c.backend, c.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		turns, err := backend.History(ctx, id)
		return HistoryLoadedMsg{Gen: gen, ConversationID: id, Turns: turns, Err: err}
	}
}

func (c *Controller) handleHistoryLoaded(msg HistoryLoadedMsg) {
	log := logger.WithConversation(msg.ConversationID)
	if msg.Gen != c.gen {
		log.Debug("dropping stale history", "gen", msg.Gen, "current", c.gen)
		return
	}
	c.loading = false

	if msg.Err != nil {
		log.Warn("failed to load history", "error", msg.Err)
		c.banner = "Failed to load conversation: " + api.Reason(msg.Err)
		return
	}

	c.history = expandTurns(msg.Turns)
	c.conversationID = msg.ConversationID
	c.banner = ""
	c.tracker.ScrollToBottom()
	c.setState(StateIdle)
	log.Info("conversation loaded", "messages", len(c.history))
}

// RefreshConversations fetches the conversation list. Only the most recent
// refresh is applied.
func (c *Controller) RefreshConversations() tea.Cmd {
	c.listSeq++
	seq, backend, timeout := c.listSeq, c.backend, c.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		convs, err := backend.ListConversations(ctx)
		return ConversationsMsg{Seq: seq, Conversations: convs, Err: err}
	}
}

func (c *Controller) handleConversations(msg ConversationsMsg) {
	log := logger.WithComponent("chat")
	if msg.Seq != c.listSeq {
		log.Debug("dropping stale conversation list", "seq", msg.Seq, "current", c.listSeq)
		return
	}
	if msg.Err != nil {
		log.Warn("failed to refresh conversations", "error", msg.Err)
		return
	}
	c.conversations = msg.Conversations
}

// DeleteConversation deletes a conversation once the user has confirmed it.
// Deleting the active conversation starts a new one. The list is refreshed
// whether or not the delete succeeded; a failure is only logged.
func (c *Controller) DeleteConversation(id string, confirmed bool) tea.Cmd {
	if !confirmed || id == "" {
		return nil
	}
	backend, timeout := c.backend, c.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return DeleteResultMsg{ConversationID: id, Err: backend.DeleteConversation(ctx, id)}
	}
}

func (c *Controller) handleDeleteResult(msg DeleteResultMsg) tea.Cmd {
	log := logger.WithConversation(msg.ConversationID)
	if msg.Err != nil {
		log.Warn("failed to delete conversation", "error", msg.Err)
	} else {
		log.Info("conversation deleted")
		if msg.ConversationID == c.conversationID {
			c.StartNewConversation()
		}
	}
	return c.RefreshConversations()
}

// Stage queues files for the next send.
func (c *Controller) Stage(files ...attach.File) []attach.Rejection {
	return c.stager.Stage(files...)
}

// Unstage removes a queued file.
func (c *Controller) Unstage(index int) error {
	return c.stager.Unstage(index)
}

// ScrollToBottom handles the explicit jump-to-bottom action.
func (c *Controller) ScrollToBottom() {
	c.tracker.ScrollToBottom()
}

// DismissBanner clears the error banner.
func (c *Controller) DismissBanner() {
	c.banner = ""
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Active reports whether a send or reveal is in progress.
func (c *Controller) Active() bool {
	return c.state == StateSending || c.state == StateStreaming
}

// Loading reports whether a history load is in progress.
func (c *Controller) Loading() bool {
	return c.loading
}

// History returns a copy of the message history.
func (c *Controller) History() []Message {
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// ConversationID returns the active conversation id, or "" before the first
// reply of a new conversation.
func (c *Controller) ConversationID() string {
	return c.conversationID
}

// Conversations returns the last fetched conversation list.
func (c *Controller) Conversations() []api.ConversationSummary {
	return c.conversations
}

// Streaming returns the revealed part of the reply being revealed.
func (c *Controller) Streaming() string {
	if c.cursor == nil {
		return ""
	}
	return c.cursor.Snapshot()
}

// Staged returns the files queued for the next send.
func (c *Controller) Staged() []attach.File {
	return c.stager.Files()
}

// Banner returns the last surfaced error, or "".
func (c *Controller) Banner() string {
	return c.banner
}

// Tracker returns the scroll tracker.
func (c *Controller) Tracker() *scroll.Tracker {
	return c.tracker
}

// LastReply returns the newest non-error assistant message.
func (c *Controller) LastReply() (Message, bool) {
	for i := len(c.history) - 1; i >= 0; i-- {
		if m := c.history[i]; m.Role == RoleAssistant && !m.IsError {
			return m, true
		}
	}
	return Message{}, false
}
