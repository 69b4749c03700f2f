package api

import (
	"encoding/json"
	"strings"
	"time"
)

// ConversationSummary is one entry of the conversation list.
type ConversationSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Turn is one stored exchange in a conversation's history.
type Turn struct {
	UserMessage string    `json:"user_message"`
	BotReply    string    `json:"bot_reply"`
	Timestamp   Timestamp `json:"timestamp"`
}

// SendResponse is the reply to a chat message.
type SendResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	Error          string `json:"error,omitempty"`
}

// Plan is a purchasable subscription plan. Price is in minor currency units.
type Plan struct {
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	Interval     string `json:"interval"`
	MessageLimit int    `json:"message_limit"`
}

// PaymentInit is the result of initializing a payment with the gateway.
type PaymentInit struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	AccessCode       string `json:"access_code,omitempty"`
}

// StatusSuccess is the only verification status that confirms a payment.
const StatusSuccess = "success"

// Verification is the result of checking a payment reference.
type Verification struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Succeeded reports whether the payment is confirmed.
func (v Verification) Succeeded() bool {
	return v.Status == StatusSuccess
}

// User is the signed-in account as reported by the identity backend.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	MessageCount int    `json:"message_count"`
	MessageLimit int    `json:"message_limit"`
}

// Role values reported by the backend.
const (
	RoleFree = "free"
	RolePro  = "pro"
)

// IsFree reports whether the user is on the free plan.
func (u User) IsFree() bool {
	return u.Role == RoleFree
}

// UsagePercent returns message usage as a percentage of the limit, or 0 when
// the user has no limit.
func (u User) UsagePercent() float64 {
	if u.MessageLimit <= 0 {
		return 0
	}
	return float64(u.MessageCount*100) / float64(u.MessageLimit)
}

// Session is returned by a successful login.
type Session struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Timestamp accepts both RFC 3339 and the zone-less ISO format some backends
// emit. Zone-less values are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
