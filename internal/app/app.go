package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/payment"
	"github.com/zhubert/parley/internal/ui"
	"github.com/zhubert/parley/internal/ui/modals"
)

// profileTimeout bounds account requests made by the app itself.
const profileTimeout = 30 * time.Second

// Focus represents which panel is focused
type Focus int

const (
	FocusSidebar Focus = iota
	FocusChat
)

// Backend is everything the app asks of the assistant backend.
type Backend interface {
	chat.Backend
	payment.Backend
	Login(ctx context.Context, email, password string) (*api.Session, error)
	SetToken(token string)
	ClearToken()
}

// Model is the main Bubble Tea model
type Model struct {
	config *config.Config
	client Backend

	header  *ui.Header
	footer  *ui.Footer
	sidebar *ui.Sidebar
	chat    *ui.Chat
	modal   *ui.Modal

	session *chat.Controller
	billing *payment.Controller

	user *api.User

	width         int
	height        int
	focus         Focus
	windowFocused bool

	// reference whose checkout was opened in the browser; checked again
	// when the terminal regains focus
	checkoutRef string

	// replies finished since the last Update, for notifications
	finished []chat.Message
	// persistConfig is false in tests and demos
	persistConfig bool
}

// StartupMsg is sent on app start to restore the previous session.
type StartupMsg struct{}

// ProfileMsg carries the signed-in user's profile.
type ProfileMsg struct {
	User *api.User
	Err  error
}

// LoginResultMsg carries the outcome of a sign-in attempt.
type LoginResultMsg struct {
	Email   string
	Session *api.Session
	Err     error
}

// Option configures a Model.
type Option func(*Model)

// WithoutPersistence keeps config changes in memory.
func WithoutPersistence() Option {
	return func(m *Model) { m.persistConfig = false }
}

// New creates a new app model
func New(cfg *config.Config, client Backend, opts ...Option) *Model {
	if savedTheme := cfg.GetTheme(); savedTheme != "" {
		ui.SetThemeByName(savedTheme)
	}

	session := chat.New(client, chat.Options{
		RevealInterval:  cfg.RevealInterval(),
		RevealChunkSize: cfg.GetRevealChunkSize(),
		ScrollThreshold: cfg.GetScrollThreshold(),
	})

	m := &Model{
		config:        cfg,
		client:        client,
		header:        ui.NewHeader(),
		footer:        ui.NewFooter(),
		sidebar:       ui.NewSidebar(),
		chat:          ui.NewChat(session.Tracker()),
		modal:         ui.NewModal(),
		session:       session,
		billing:       payment.New(client),
		focus:         FocusChat,
		windowFocused: true,
		persistConfig: true,
	}
	for _, opt := range opts {
		opt(m)
	}

	session.OnReply = func(msg chat.Message) {
		m.finished = append(m.finished, msg)
	}
	session.OnStateChange = func(from, to chat.State) {
		logger.WithComponent("app").Debug("session state", "from", from, "to", to)
	}

	m.chat.SetFocused(true)
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		return StartupMsg{}
	}
}

// handleStartup restores the signed-in session, or asks for credentials.
func (m *Model) handleStartup() tea.Cmd {
	if !m.config.IsLoggedIn() {
		m.showLogin()
		return nil
	}

	cmds := []tea.Cmd{m.fetchProfile(), m.session.RefreshConversations()}
	if id := m.config.GetLastConversationID(); id != "" {
		cmds = append(cmds, m.session.LoadConversation(id))
		m.syncChat()
	}
	return tea.Batch(cmds...)
}

// fetchProfile loads the signed-in user for the header.
func (m *Model) fetchProfile() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), profileTimeout)
		defer cancel()
		user, err := client.Me(ctx)
		return ProfileMsg{User: user, Err: err}
	}
}

// login exchanges credentials for a token.
func (m *Model) login(email, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), profileTimeout)
		defer cancel()
		sess, err := client.Login(ctx, email, password)
		return LoginResultMsg{Email: email, Session: sess, Err: err}
	}
}

func (m *Model) handleLoginResult(msg LoginResultMsg) tea.Cmd {
	log := logger.WithComponent("app")
	if msg.Err != nil {
		log.Warn("login failed", "email", msg.Email, "error", msg.Err)
		if _, ok := m.modal.State.(*modals.LoginState); ok {
			m.modal.SetError(api.Reason(msg.Err))
			return nil
		}
		return m.ShowFlashError("Sign in failed: " + api.Reason(msg.Err))
	}

	log.Info("signed in", "email", msg.Email)
	m.client.SetToken(msg.Session.AccessToken)
	m.config.SetCredentials(msg.Session.AccessToken, msg.Email)
	m.user = &msg.Session.User
	m.header.SetUser(m.user)
	m.modal.Hide()

	m.session.StartNewConversation()
	return tea.Batch(
		m.saveConfigOrFlash(),
		m.session.RefreshConversations(),
		m.fetchProfile(),
		m.ShowFlashSuccess("Signed in as "+msg.Email),
	)
}

// logout forgets the token and clears everything tied to the account.
func (m *Model) logout() tea.Cmd {
	logger.WithComponent("app").Info("signed out")
	m.client.ClearToken()
	m.config.ClearCredentials()
	m.config.SetLastConversationID("")
	m.user = nil
	m.header.SetUser(nil)
	m.billing.Leave()
	m.session.Reset()
	m.syncChat()
	m.showLogin()
	return m.saveConfigOrFlash()
}

func (m *Model) handleProfile(msg ProfileMsg) tea.Cmd {
	if msg.Err != nil {
		logger.WithComponent("app").Warn("profile fetch failed", "error", msg.Err)
		if api.StatusCode(msg.Err) == 401 {
			m.client.ClearToken()
			m.config.ClearCredentials()
			m.showLogin()
			m.modal.SetError("Your session has expired. Sign in again.")
		}
		return nil
	}
	m.user = msg.User
	m.header.SetUser(m.user)
	return nil
}

// toggleFocus switches between the sidebar and the chat panel.
func (m *Model) toggleFocus() {
	if m.focus == FocusSidebar {
		m.setFocus(FocusChat)
	} else {
		m.setFocus(FocusSidebar)
	}
}

func (m *Model) setFocus(f Focus) {
	m.focus = f
	m.sidebar.SetFocused(f == FocusSidebar)
	m.chat.SetFocused(f == FocusChat)
}

// activeTitle returns the title of the conversation shown in the chat panel.
func (m *Model) activeTitle() string {
	id := m.session.ConversationID()
	if id == "" {
		return ""
	}
	for _, c := range m.session.Conversations() {
		if c.ID == id {
			return chat.SummarizeTitle(c.Title)
		}
	}
	return ""
}

// syncChat pushes session state into the panels.
func (m *Model) syncChat() {
	m.chat.SetView(ui.ChatView{
		Messages:  m.session.History(),
		Streaming: m.session.Streaming(),
		Sending:   m.session.State() == chat.StateSending,
		Loading:   m.session.Loading(),
		Staged:    m.session.Staged(),
		Banner:    m.session.Banner(),
	})
	m.sidebar.SetConversations(m.session.Conversations(), m.session.ConversationID())
	m.header.SetTitle(m.activeTitle())
}
