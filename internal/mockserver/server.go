// Package mockserver is an in-memory implementation of the assistant
// backend. It serves the same HTTP contract as the real service so the
// client can be exercised offline: the demo command runs the TUI against it
// and package tests mount it with httptest.
package mockserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/logger"
)

const (
	DefaultFreeMessageLimit = 10
	DefaultConfirmAfter     = 3

	maxUploadMemory = 32 << 20
)

// Options tunes the simulated backend.
type Options struct {
	// FreeMessageLimit is the number of messages a free account may send.
	FreeMessageLimit int
	// ConfirmAfter is the number of verifications after which a payment
	// reports success on its own. Negative values disable auto-confirmation;
	// such payments only succeed through MarkPaid.
	ConfirmAfter int
	// ReplyDelay is slept before answering a chat message.
	ReplyDelay time.Duration
}

// DefaultPlans is the catalogue served by /payments/plans.
var DefaultPlans = map[string]api.Plan{
	"pro_monthly": {Name: "Pro Monthly", Price: 500000, Interval: "monthly", MessageLimit: 1000},
	"pro_yearly":  {Name: "Pro Yearly", Price: 5000000, Interval: "annually", MessageLimit: 15000},
}

type account struct {
	user api.User
}

type conversation struct {
	id      string
	owner   string
	title   string
	turns   []turn
	created time.Time
}

type turn struct {
	user  string
	reply string
	at    time.Time
}

type payment struct {
	reference string
	planKey   string
	owner     string
	checks    int
	paid      bool
}

// Server holds the simulated backend state.
type Server struct {
	opts Options

	mu            sync.Mutex
	accounts      map[string]*account // by email
	tokens        map[string]string   // token -> email
	conversations map[string]*conversation
	payments      map[string]*payment
	plans         map[string]api.Plan

	now func() time.Time
}

// New creates an empty backend.
func New(opts Options) *Server {
	if opts.FreeMessageLimit <= 0 {
		opts.FreeMessageLimit = DefaultFreeMessageLimit
	}
	if opts.ConfirmAfter == 0 {
		opts.ConfirmAfter = DefaultConfirmAfter
	}
	return &Server{
		opts:          opts,
		accounts:      make(map[string]*account),
		tokens:        make(map[string]string),
		conversations: make(map[string]*conversation),
		payments:      make(map[string]*payment),
		plans:         DefaultPlans,
		now:           time.Now,
	}
}

// Handler returns the HTTP routes of the backend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Post("/auth/login", s.handleLogin)
	r.Get("/payments/plans", s.handlePlans)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/auth/me", s.handleMe)
		r.Get("/conversations", s.handleListConversations)
		r.Delete("/conversations/{id}", s.handleDeleteConversation)
		r.Get("/history/{id}", s.handleHistory)
		r.Post("/chat", s.handleChat)
		r.Post("/payments/initialize", s.handleInitializePayment)
		r.Get("/payments/verify/{reference}", s.handleVerifyPayment)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	return r
}

// IssueToken creates (or reuses) an account for email and returns a fresh
// bearer token for it.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(email, "")
}

// MarkPaid confirms a payment reference regardless of ConfirmAfter. It
// reports whether the reference exists.
func (s *Server) MarkPaid(reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[reference]
	if ok {
		p.paid = true
	}
	return ok
}

// User returns a copy of the account for email.
func (s *Server) User(email string) (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok {
		return api.User{}, false
	}
	return acct.user, true
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			logger.WithComponent("mockserver").Debug("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"latency", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
