package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindUnknown:   "unknown error",
		KindNotFound:  "not found",
		KindInvalid:   "invalid",
		KindIO:        "I/O error",
		KindConfig:    "configuration error",
		KindTransport: "transport error",
		KindBusy:      "busy",
		KindTimeout:   "timeout",
		KindAuth:      "not authenticated",
		Kind(999):     "unknown error",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}

func TestE_Formatting(t *testing.T) {
	refused := errors.New("connection refused")
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		want     string
	}{
		{
			name:     "op, context and cause",
			err:      E(Op("api.Send"), KindTransport, "POST /chat", refused),
			wantKind: KindTransport,
			want:     "api.Send: POST /chat: connection refused",
		},
		{
			name:     "context becomes the cause",
			err:      E(Op("chat.Send"), KindBusy, "session is busy (Revealing)"),
			wantKind: KindBusy,
			want:     "chat.Send: session is busy (Revealing)",
		},
		{
			name:     "bare cause",
			err:      E(refused),
			wantKind: KindUnknown,
			want:     "connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := GetKind(tt.err); got != tt.wantKind {
				t.Errorf("GetKind() = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestIs(t *testing.T) {
	busy := SessionBusy("Sending")
	tests := []struct {
		name     string
		err      error
		kind     Kind
		expected bool
	}{
		{"matching kind", busy, KindBusy, true},
		{"other kind", busy, KindInvalid, false},
		{"wrapped", fmt.Errorf("send: %w", busy), KindBusy, true},
		{"foreign error", errors.New("plain"), KindBusy, false},
		{"nil", nil, KindBusy, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.kind); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	underlying := errors.New("boom")
	tests := []struct {
		name   string
		err    error
		kind   Kind
		op     Op
		substr string
	}{
		{"attachment too large", AttachmentTooLarge("big.bin", 6<<20, 5<<20), KindInvalid, "attach.Stage", "big.bin"},
		{"empty message", EmptyMessage(), KindInvalid, "chat.Send", "no text"},
		{"attachment index", AttachmentIndex(4, 2), KindInvalid, "attach.Unstage", "index 4"},
		{"session busy", SessionBusy("Sending"), KindBusy, "chat.Send", "Sending"},
		{"not signed in", NotSignedIn(), KindAuth, "cmd", "parley login"},
		{"transport", Transport("api.Send", underlying), KindTransport, "api.Send", "boom"},
		{"payment timeout", PaymentTimeout("ref-1", 60), KindTimeout, "payment.Poll", "60 checks"},
		{"config load", ConfigLoadFailed("/x/config.json", underlying), KindConfig, "config.Load", "/x/config.json"},
		{"config save", ConfigSaveFailed("/x/config.json", underlying), KindConfig, "config.Save", "boom"},
		{"config invalid", ConfigInvalid("server_url is empty"), KindInvalid, "config.Validate", "server_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, tt.kind) {
				t.Errorf("kind = %v, want %v", GetKind(tt.err), tt.kind)
			}
			var e *Error
			if !As(tt.err, &e) {
				t.Fatalf("expected *Error, got %T", tt.err)
			}
			if e.Op != tt.op {
				t.Errorf("Op = %q, want %q", e.Op, tt.op)
			}
			if !strings.Contains(tt.err.Error(), tt.substr) {
				t.Errorf("Error() = %q, want substring %q", tt.err.Error(), tt.substr)
			}
		})
	}
}

func TestChain_OuterKindWins(t *testing.T) {
	cause := errors.New("permission denied")
	err := ConfigSaveFailed("/x/config.json", E(Op("os.WriteFile"), KindIO, cause))

	if !errors.Is(err, cause) {
		t.Error("the root cause should stay reachable through the chain")
	}
	if GetKind(err) != KindConfig {
		t.Errorf("GetKind = %v, want the outermost kind", GetKind(err))
	}
}
