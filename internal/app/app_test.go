package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/mockserver"
	"github.com/zhubert/parley/internal/ui/modals"
)

func TestStartup_SignedOutShowsLogin(t *testing.T) {
	m, _ := testModelWithSize(t, false, 120, 40)
	drain(t, m, m.Init())

	if _, ok := m.modal.State.(*modals.LoginState); !ok {
		t.Fatalf("modal = %T, want *modals.LoginState", m.modal.State)
	}
	if m.user != nil {
		t.Error("no profile should be fetched while signed out")
	}
}

func TestStartup_RestoresLastConversation(t *testing.T) {
	m, _ := testModelWithSize(t, true, 120, 40)

	resp, err := m.client.Send(context.Background(), api.SendRequest{Message: "Is it raining?"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	m.config.SetLastConversationID(resp.ConversationID)

	drain(t, m, m.Init())

	if got := m.session.ConversationID(); got != resp.ConversationID {
		t.Errorf("ConversationID = %q, want %q", got, resp.ConversationID)
	}
	if got := len(m.session.History()); got != 2 {
		t.Errorf("history has %d messages, want 2", got)
	}
	if m.sidebar.Len() != 1 {
		t.Errorf("sidebar has %d conversations, want 1", m.sidebar.Len())
	}
	if m.user == nil || m.user.Email != testEmail {
		t.Errorf("user = %+v, want %s", m.user, testEmail)
	}
	if !strings.Contains(m.RenderToString(), "Is it raining?") {
		t.Error("header should show the active conversation title")
	}
}

func TestStartup_MissingLastConversationIsForgotten(t *testing.T) {
	m, _ := testModelWithSize(t, true, 120, 40)
	m.config.SetLastConversationID("gone")

	drain(t, m, m.Init())

	if id := m.config.GetLastConversationID(); id != "" {
		t.Errorf("last conversation = %q, want it cleared", id)
	}
	if m.session.Banner() == "" {
		t.Error("a failed history load should show a banner")
	}
}

func TestStartup_ExpiredTokenAsksToSignIn(t *testing.T) {
	m, _ := testModelWithSize(t, false, 120, 40)
	m.config.SetCredentials("stale-token", testEmail)
	m.client.SetToken("stale-token")

	drain(t, m, m.Init())

	if _, ok := m.modal.State.(*modals.LoginState); !ok {
		t.Fatalf("modal = %T, want *modals.LoginState", m.modal.State)
	}
	if m.config.IsLoggedIn() {
		t.Error("an expired token should be forgotten")
	}
	if !strings.Contains(m.modal.GetError(), "expired") {
		t.Errorf("modal error = %q", m.modal.GetError())
	}
}

func TestLogin(t *testing.T) {
	m, _ := testModelWithSize(t, false, 120, 40)
	drain(t, m, m.Init())

	drain(t, m, m.login(testEmail, "secret"))

	if m.modal.IsVisible() {
		t.Error("login modal should close on success")
	}
	if !m.config.IsLoggedIn() || m.config.GetUserEmail() != testEmail {
		t.Errorf("config not updated: logged in %v, email %q", m.config.IsLoggedIn(), m.config.GetUserEmail())
	}
	if m.user == nil || m.user.Email != testEmail {
		t.Errorf("user = %+v", m.user)
	}

	saved, err := config.LoadFrom(m.config.Path())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if saved.GetToken() == "" {
		t.Error("token should be persisted")
	}
}

func TestLogin_Failures(t *testing.T) {
	m, _ := testModelWithSize(t, false, 120, 40)
	drain(t, m, m.Init())

	press(t, m, keys.Enter)
	if got := m.modal.GetError(); got != "Email and password are required" {
		t.Errorf("modal error = %q", got)
	}

	drain(t, m, m.login(testEmail, ""))
	if _, ok := m.modal.State.(*modals.LoginState); !ok {
		t.Fatal("login modal should stay open after a rejected sign in")
	}
	if got := m.modal.GetError(); !strings.Contains(got, "Incorrect email or password") {
		t.Errorf("modal error = %q", got)
	}
}

func TestLogout(t *testing.T) {
	m, _ := startedModel(t)
	sendMessage(t, m, "hello")

	m.setFocus(FocusSidebar)
	press(t, m, "l")

	if m.config.IsLoggedIn() {
		t.Error("config should be signed out")
	}
	if m.config.GetLastConversationID() != "" {
		t.Error("last conversation should be forgotten")
	}
	if m.sidebar.Len() != 0 || len(m.session.History()) != 0 {
		t.Error("conversations should be cleared on sign out")
	}
	if _, ok := m.modal.State.(*modals.LoginState); !ok {
		t.Errorf("modal = %T, want login", m.modal.State)
	}
}

func TestSend_RevealsReply(t *testing.T) {
	m, _ := startedModel(t)
	sendMessage(t, m, "What is Go?")

	history := m.session.History()
	if len(history) != 2 {
		t.Fatalf("history has %d messages, want 2", len(history))
	}
	if history[0].Role != chat.RoleUser || history[0].Content != "What is Go?" {
		t.Errorf("first message = %+v", history[0])
	}
	if !strings.Contains(history[1].Content, `You asked: "What is Go?"`) {
		t.Errorf("reply = %q", history[1].Content)
	}
	if m.session.State() != chat.StateIdle {
		t.Errorf("state = %v, want idle", m.session.State())
	}
	if m.chat.Input() != "" {
		t.Error("input should be cleared after sending")
	}

	id := m.session.ConversationID()
	if id == "" || m.config.GetLastConversationID() != id {
		t.Errorf("last conversation = %q, active = %q", m.config.GetLastConversationID(), id)
	}
	if m.sidebar.Len() != 1 {
		t.Errorf("sidebar has %d conversations, want 1", m.sidebar.Len())
	}
	if m.user == nil || m.user.MessageCount != 1 {
		t.Errorf("usage not refreshed: %+v", m.user)
	}
}

func TestSend_EmptyInputIgnored(t *testing.T) {
	m, _ := startedModel(t)
	sendMessage(t, m, "   ")

	if len(m.session.History()) != 0 {
		t.Error("blank input must not be sent")
	}
	if m.footer.HasFlash() {
		t.Error("blank input is ignored silently")
	}
}

func TestSend_BusyShowsWarning(t *testing.T) {
	m, _ := startedModel(t)
	m.setFocus(FocusChat)
	m.chat.SetInput("first")
	m.Update(keyPress(keys.Enter)) // request left in flight

	m.chat.SetInput("second")
	m.Update(keyPress(keys.Enter))

	if got := len(m.session.History()); got != 1 {
		t.Errorf("history has %d messages, want only the first", got)
	}
	if !m.footer.HasFlash() {
		t.Error("a busy send should flash a warning")
	}
	if m.chat.Input() != "second" {
		t.Error("rejected input should be kept")
	}
}

func TestSend_SignedOutOpensLogin(t *testing.T) {
	m, _ := testModelWithSize(t, false, 120, 40)
	sendMessage(t, m, "hello")

	if _, ok := m.modal.State.(*modals.LoginState); !ok {
		t.Errorf("modal = %T, want login", m.modal.State)
	}
}

func TestSend_LimitReached(t *testing.T) {
	m, srv := testModelWithBackend(t, mockserver.Options{FreeMessageLimit: 1, ConfirmAfter: 1}, true, 120, 40)
	drain(t, m, m.Init())

	sendMessage(t, m, "one")
	sendMessage(t, m, "two")

	history := m.session.History()
	last := history[len(history)-1]
	if !last.IsError || !strings.Contains(last.Content, "Message limit reached") {
		t.Errorf("last message = %+v", last)
	}
	if !m.footer.HasFlash() {
		t.Error("limit should flash an upgrade hint")
	}
	if u, _ := srv.User(testEmail); u.MessageCount != 1 {
		t.Errorf("server count = %d, want 1", u.MessageCount)
	}
}

func TestReplyNotification(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		blurred bool
		want    int
	}{
		{"focused terminal", true, false, 0},
		{"background terminal", true, true, 1},
		{"disabled", false, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recordNotifications(t)
			m, _ := startedModel(t)
			m.config.SetNotificationsEnabled(tt.enabled)
			if tt.blurred {
				m.Update(tea.BlurMsg{})
			}

			sendMessage(t, m, "Is it raining?")

			if len(*got) != tt.want {
				t.Fatalf("notifications = %v, want %d", *got, tt.want)
			}
			if tt.want > 0 && (*got)[0] != "Reply ready in Is it raining?" {
				t.Errorf("notification = %q", (*got)[0])
			}
		})
	}
}

func TestFocus(t *testing.T) {
	m, _ := startedModel(t)
	if m.focus != FocusChat || !m.chat.IsFocused() {
		t.Fatal("chat should start focused")
	}

	press(t, m, keys.Tab)
	if m.focus != FocusSidebar || !m.sidebar.IsFocused() || m.chat.IsFocused() {
		t.Error("tab should focus the sidebar")
	}

	press(t, m, keys.Tab)
	if m.focus != FocusChat {
		t.Error("tab should focus the chat again")
	}

	press(t, m, keys.Escape)
	if m.focus != FocusSidebar {
		t.Error("esc without a banner should focus the sidebar")
	}
}

func TestEscapeDismissesBannerFirst(t *testing.T) {
	m, _ := testModelWithSize(t, true, 120, 40)
	m.config.SetLastConversationID("gone")
	drain(t, m, m.Init())
	if m.session.Banner() == "" {
		t.Fatal("expected a banner")
	}

	m.setFocus(FocusChat)
	press(t, m, keys.Escape)

	if m.session.Banner() != "" {
		t.Error("esc should dismiss the banner")
	}
	if m.focus != FocusChat {
		t.Error("dismissing the banner should keep the chat focused")
	}
}

func TestWindowFocusTracking(t *testing.T) {
	m, _ := testModelWithSize(t, true, 120, 40)
	m.Update(tea.BlurMsg{})
	if m.windowFocused {
		t.Error("blur should clear windowFocused")
	}
	m.Update(tea.FocusMsg{})
	if !m.windowFocused {
		t.Error("focus should set windowFocused")
	}
}

func TestOpenSelectedConversation(t *testing.T) {
	m, _ := startedModel(t)
	sendMessage(t, m, "first question?")
	first := m.session.ConversationID()

	press(t, m, keys.CtrlN)
	sendMessage(t, m, "second question?")
	if m.sidebar.Len() != 2 {
		t.Fatalf("sidebar has %d conversations, want 2", m.sidebar.Len())
	}

	m.setFocus(FocusSidebar)
	for i := 0; i < m.sidebar.Len(); i++ {
		if sel, _ := m.sidebar.Selected(); sel.ID == first {
			break
		}
		press(t, m, keys.Down)
	}
	press(t, m, keys.Enter)

	if m.session.ConversationID() != first {
		t.Errorf("active = %q, want %q", m.session.ConversationID(), first)
	}
	if m.focus != FocusChat {
		t.Error("opening a conversation should focus the chat")
	}
	if m.config.GetLastConversationID() != first {
		t.Error("opened conversation should be remembered")
	}
}

func TestView(t *testing.T) {
	m, _ := testModelWithSize(t, true, 0, 0)
	v := m.View()
	if !v.AltScreen || !v.ReportFocus {
		t.Error("view should use the alt screen and report focus")
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	out := m.RenderToString()
	for _, want := range []string{"parley", "Conversations", "Start a new conversation"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestQuit(t *testing.T) {
	m, _ := testModelWithSize(t, true, 120, 40)
	_, cmd := m.Update(keyPress(keys.CtrlC))
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should return tea.Quit")
	}
}
