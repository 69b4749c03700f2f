// Package api is the HTTP client for the assistant backend.
//
// The client carries its own base URL and bearer token. Nothing is shared
// through package state; callers change the token with SetToken and
// ClearToken.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhubert/parley/internal/attach"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
)

const (
	defaultTimeout   = 2 * time.Minute
	defaultUserAgent = "parley"
	maxErrorBody     = 1 << 20

	// DefaultReason is shown when a failure carries no description at all.
	DefaultReason = "Could not connect to AI backend"
)

// Error describes a failed backend call. Status is 0 when no response was
// received.
type Error struct {
	Op     string
	Status int
	Detail FailureDetail
	Err    error
}

func (e *Error) Error() string {
	return e.Reason()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Reason returns the human-readable failure reason.
func (e *Error) Reason() string {
	return e.Detail.Reason(e.fallback())
}

func (e *Error) fallback() string {
	switch {
	case e.Err != nil && e.Err.Error() != "":
		return e.Err.Error()
	case e.Status != 0:
		return fmt.Sprintf("HTTP %d %s", e.Status, http.StatusText(e.Status))
	default:
		return DefaultReason
	}
}

// Reason returns the human-readable reason for any error returned by Client.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if perrors.As(err, &apiErr) {
		return apiErr.Reason()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultReason
}

// StatusCode returns the HTTP status of a failed call, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if perrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to the assistant backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ListConversations returns the user's saved conversations.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	var resp struct {
		Conversations []ConversationSummary `json:"conversations"`
	}
	if err := c.doJSON(ctx, "api.ListConversations", http.MethodGet, "/conversations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// History returns the stored turns of a conversation.
func (c *Client) History(ctx context.Context, conversationID string) ([]Turn, error) {
	var resp struct {
		Messages []Turn `json:"messages"`
	}
	path := "/history/" + url.PathEscape(conversationID)
	if err := c.doJSON(ctx, "api.History", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendRequest is one outgoing chat message.
type SendRequest struct {
	Message        string
	ConversationID string // empty starts a new conversation
	Files          []attach.File
}

// Send posts a chat message and returns the assistant's reply. A response
// carrying an "error" field is a failure even when the status is 2xx.
func (c *Client) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	const op = "api.Send"

	body, contentType, err := encodeSend(req)
	if err != nil {
		return nil, perrors.Transport(perrors.Op(op), &Error{Op: op, Err: err})
	}

	var resp SendResponse
	if err := c.do(ctx, op, http.MethodPost, "/chat", body, contentType, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, perrors.Transport(perrors.Op(op), &Error{
			Op:     op,
			Status: http.StatusOK,
			Detail: FailureDetail{Kind: DetailText, Text: resp.Error},
		})
	}
	return &resp, nil
}

func encodeSend(req SendRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("message", req.Message); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("use_memory", "true"); err != nil {
		return nil, "", err
	}
	if req.ConversationID != "" {
		if err := w.WriteField("conversation_id", req.ConversationID); err != nil {
			return nil, "", err
		}
	}

	for _, f := range req.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(f.Name)))
		ct := f.MimeType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// DeleteConversation removes a conversation.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	path := "/conversations/" + url.PathEscape(conversationID)
	return c.doJSON(ctx, "api.DeleteConversation", http.MethodDelete, path, nil, nil)
}

// Plans returns the purchasable plans keyed by plan key.
func (c *Client) Plans(ctx context.Context) (map[string]Plan, error) {
	var resp struct {
		Plans map[string]Plan `json:"plans"`
	}
	if err := c.doJSON(ctx, "api.Plans", http.MethodGet, "/payments/plans", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Plans, nil
}

// InitializePayment starts a payment for the plan.
func (c *Client) InitializePayment(ctx context.Context, planKey string) (*PaymentInit, error) {
	var resp PaymentInit
	path := "/payments/initialize?plan=" + url.QueryEscape(planKey)
	if err := c.doJSON(ctx, "api.InitializePayment", http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyPayment checks the status of a payment reference.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (*Verification, error) {
	var resp Verification
	path := "/payments/verify/" + url.PathEscape(reference)
	if err := c.doJSON(ctx, "api.VerifyPayment", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a session. The returned token is not
// installed on the client; call SetToken to use it.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp Session
	if err := c.doJSON(ctx, "api.Login", http.MethodPost, "/auth/login", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp User
	if err := c.doJSON(ctx, "api.Me", http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, payload, out any) error {
	if payload == nil {
		return c.do(ctx, op, method, path, nil, "", out)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return perrors.Transport(perrors.Op(op), &Error{Op: op, Err: err})
	}
	return c.do(ctx, op, method, path, bytes.NewReader(data), "application/json", out)
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	requestID := uuid.NewString()
	log := logger.WithComponent("api").With("op", op, "request_id", requestID)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return perrors.Transport(perrors.Op(op), &Error{Op: op, Err: fmt.Errorf("failed to create request: %w", err)})
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err)
		return perrors.Transport(perrors.Op(op), &Error{Op: op, Err: err})
	}
	defer resp.Body.Close()

	log.Debug("response", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Op: op, Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var envelope struct {
			Detail json.RawMessage `json:"detail"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Detail = ParseDetail(envelope.Detail)
		}
		log.Warn("backend returned error", "status", resp.StatusCode, "detail_kind", apiErr.Detail.Kind.String())
		return perrors.Transport(perrors.Op(op), apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perrors.Transport(perrors.Op(op), &Error{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("failed to parse response: %w", err),
		})
	}
	return nil
}
