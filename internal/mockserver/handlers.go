package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zhubert/parley/internal/api"
)

type ctxKey struct{}

// historyLayout is the zone-less timestamp format the real backend emits.
const historyLayout = "2006-01-02T15:04:05.000000"

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDetail sends an error body in the backend's {"detail": ...} shape.
// detail may be a string, a list of validation errors, or an object.
func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

type validationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		s.mu.Lock()
		email, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, email)))
	})
}

func emailFrom(r *http.Request) string {
	email, _ := r.Context().Value(ctxKey{}).(string)
	return email
}

func (s *Server) issueTokenLocked(email, name string) string {
	acct, ok := s.accounts[email]
	if !ok {
		if name == "" {
			name, _, _ = strings.Cut(email, "@")
		}
		acct = &account{user: api.User{
			ID:           uuid.NewString(),
			Email:        email,
			Name:         name,
			Role:         api.RoleFree,
			MessageLimit: s.opts.FreeMessageLimit,
		}}
		s.accounts[email] = acct
	}
	token := uuid.NewString()
	s.tokens[token] = email
	return token
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	s.mu.Lock()
	token := s.issueTokenLocked(req.Email, "")
	user := s.accounts[req.Email].user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.Session{AccessToken: token, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := s.User(emailFrom(r))
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	owner := emailFrom(r)

	s.mu.Lock()
	var convs []*conversation
	for _, c := range s.conversations {
		if c.owner == owner {
			convs = append(convs, c)
		}
	}
	s.mu.Unlock()

	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].created.Equal(convs[j].created) {
			return convs[i].created.After(convs[j].created)
		}
		return convs[i].id < convs[j].id
	})

	summaries := make([]api.ConversationSummary, 0, len(convs))
	for _, c := range convs {
		summaries = append(summaries, api.ConversationSummary{ID: c.id, Title: c.title})
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": summaries})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	type wireTurn struct {
		UserMessage string `json:"user_message"`
		BotReply    string `json:"bot_reply"`
		Timestamp   string `json:"timestamp"`
	}

	s.mu.Lock()
	c, ok := s.conversations[chi.URLParam(r, "id")]
	if !ok || c.owner != emailFrom(r) {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Conversation not found")
		return
	}
	turns := make([]wireTurn, 0, len(c.turns))
	for _, t := range c.turns {
		turns = append(turns, wireTurn{UserMessage: t.user, BotReply: t.reply, Timestamp: t.at.UTC().Format(historyLayout)})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"messages": turns})
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	c, ok := s.conversations[id]
	if ok && c.owner == emailFrom(r) {
		delete(s.conversations, id)
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted"})
}

type upload struct {
	name     string
	mimeType string
	size     int64
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeDetail(w, http.StatusBadRequest, "Expected multipart form data")
		return
	}
	message := strings.TrimSpace(r.FormValue("message"))
	conversationID := r.FormValue("conversation_id")

	var files []upload
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			files = append(files, upload{name: fh.Filename, mimeType: fh.Header.Get("Content-Type"), size: fh.Size})
		}
	}

	if message == "" && len(files) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, []validationError{
			{Loc: []string{"body", "message"}, Msg: "field required", Type: "value_error.missing"},
		})
		return
	}

	owner := emailFrom(r)
	s.mu.Lock()
	acct := s.accounts[owner]
	if acct.user.Role == api.RoleFree && acct.user.MessageCount >= acct.user.MessageLimit {
		s.mu.Unlock()
		writeDetail(w, http.StatusForbidden, "Message limit reached. Upgrade to Pro to keep chatting.")
		return
	}

	var c *conversation
	if conversationID != "" {
		c = s.conversations[conversationID]
		if c == nil || c.owner != owner {
			s.mu.Unlock()
			writeDetail(w, http.StatusNotFound, "Conversation not found")
			return
		}
	} else {
		c = &conversation{id: uuid.NewString(), owner: owner, title: titleFor(message, files), created: s.now()}
		s.conversations[c.id] = c
	}

	reply := composeReply(message, files, len(c.turns))
	c.turns = append(c.turns, turn{user: message, reply: reply, at: s.now()})
	acct.user.MessageCount++
	id := c.id
	s.mu.Unlock()

	if s.opts.ReplyDelay > 0 {
		select {
		case <-time.After(s.opts.ReplyDelay):
		case <-r.Context().Done():
			return
		}
	}

	writeJSON(w, http.StatusOK, api.SendResponse{ConversationID: id, Reply: reply})
}

func titleFor(message string, files []upload) string {
	if message != "" {
		return message
	}
	if len(files) > 0 {
		return "About " + files[0].name
	}
	return "New Chat"
}

// composeReply builds a deterministic answer that exercises the client's
// rendering: sentence boundaries, a list and a fenced code block.
func composeReply(message string, files []upload, turn int) string {
	var b strings.Builder
	if message != "" {
		fmt.Fprintf(&b, "You asked: %q. ", message)
	}
	if len(files) > 0 {
		fmt.Fprintf(&b, "I received %d file(s):\n", len(files))
		for _, f := range files {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", f.name, f.mimeType, humanize.IBytes(uint64(f.size)))
		}
	}
	fmt.Fprintf(&b, "\nThis is reply number %d in this conversation. Here is a small example!\n\n", turn+1)
	b.WriteString("```go\npackage main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello from parley\")\n}\n```\n")
	b.WriteString("\nAnything else?")
	return b.String()
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"plans": s.plans})
}

func (s *Server) handleInitializePayment(w http.ResponseWriter, r *http.Request) {
	planKey := r.URL.Query().Get("plan")
	if _, ok := s.plans[planKey]; !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid plan")
		return
	}

	reference := "PRL-" + strings.ToUpper(uuid.NewString()[:12])
	accessCode := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]

	s.mu.Lock()
	s.payments[reference] = &payment{reference: reference, planKey: planKey, owner: emailFrom(r)}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.PaymentInit{
		Reference:        reference,
		AuthorizationURL: "https://checkout.paystack.com/" + accessCode,
		AccessCode:       accessCode,
	})
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[reference]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Transaction not found")
		return
	}
	p.checks++
	if !p.paid && s.opts.ConfirmAfter > 0 && p.checks >= s.opts.ConfirmAfter {
		p.paid = true
	}
	if !p.paid {
		writeJSON(w, http.StatusOK, api.Verification{Status: "pending"})
		return
	}

	plan := s.plans[p.planKey]
	if acct, ok := s.accounts[p.owner]; ok {
		acct.user.Role = api.RolePro
		acct.user.MessageLimit = plan.MessageLimit
	}
	writeJSON(w, http.StatusOK, api.Verification{
		Status:  api.StatusSuccess,
		Message: "Payment verified. Welcome to " + plan.Name + "!",
	})
}
