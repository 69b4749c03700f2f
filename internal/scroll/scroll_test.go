package scroll

import (
	"strings"
	"testing"

	"charm.land/bubbles/v2/viewport"
)

func TestObserve(t *testing.T) {
	tests := []struct {
		name                                   string
		scrollHeight, scrollTop, clientHeight int
		want                                   bool
	}{
		{"exactly at bottom", 1000, 600, 400, true},
		{"within threshold", 1000, 501, 400, true},
		{"at threshold", 1000, 500, 400, false},
		{"far above", 1000, 0, 400, false},
		{"content shorter than container", 300, 0, 400, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(DefaultThreshold)
			if got := tr.Observe(tt.scrollHeight, tt.scrollTop, tt.clientHeight); got != tt.want {
				t.Errorf("Observe() = %v, want %v", got, tt.want)
			}
			if tr.AtBottom() != tt.want {
				t.Errorf("AtBottom() = %v, want %v", tr.AtBottom(), tt.want)
			}
		})
	}
}

func TestNew_DefaultsThreshold(t *testing.T) {
	if New(0).Threshold() != DefaultThreshold {
		t.Error("zero threshold should use default")
	}
	if !New(5).AtBottom() {
		t.Error("new tracker should start at bottom")
	}
}

func TestShouldFollow(t *testing.T) {
	tr := New(DefaultThreshold)

	if !tr.ShouldFollow() {
		t.Error("at bottom should follow")
	}

	// User scrolls up while idle.
	tr.Observe(2000, 0, 400)
	if tr.ShouldFollow() {
		t.Error("idle and scrolled up should not follow")
	}

	// Next send pins the view.
	tr.Pin()
	if !tr.ShouldFollow() {
		t.Error("send should pin to bottom")
	}
}

// A user scrolling away during a rapid reveal must win over every later
// snapshot until they jump back.
func TestShouldFollow_UserScrollDuringReveal(t *testing.T) {
	tr := New(DefaultThreshold)
	tr.Pin()

	scrollHeight := 1000
	for i := 0; i < 5; i++ {
		if !tr.ShouldFollow() {
			t.Fatalf("snapshot %d: should follow before user scrolls", i)
		}
		scrollHeight += 40
	}

	tr.Observe(scrollHeight, 100, 400)
	if !tr.Detached() {
		t.Error("scroll away should detach")
	}

	for i := 0; i < 200; i++ {
		if tr.ShouldFollow() {
			t.Fatalf("snapshot %d after user scroll: should not follow", i)
		}
	}

	tr.ScrollToBottom()
	if !tr.ShouldFollow() || !tr.AtBottom() || tr.Detached() {
		t.Error("ScrollToBottom should re-attach")
	}
}

func TestShouldFollow_UserReturnsToBottom(t *testing.T) {
	tr := New(DefaultThreshold)
	tr.Observe(1000, 0, 400)
	tr.Observe(1000, 590, 400)

	if !tr.ShouldFollow() || tr.Detached() {
		t.Error("scrolling back to bottom should re-attach")
	}
}

func newViewport(lines, height int) viewport.Model {
	vp := viewport.New()
	vp.SetWidth(40)
	vp.SetHeight(height)
	vp.SetContent(strings.TrimSuffix(strings.Repeat("line\n", lines), "\n"))
	return vp
}

func TestFollow_Viewport(t *testing.T) {
	tr := New(LineThreshold)
	vp := newViewport(50, 10)

	if !tr.Follow(&vp) {
		t.Fatal("tracker at bottom should follow")
	}
	if !vp.AtBottom() {
		t.Error("viewport should be at bottom after Follow")
	}

	vp.GotoTop()
	if tr.ObserveViewport(vp) {
		t.Error("viewport at top should not be at bottom")
	}

	vp.SetContent(strings.Repeat("line\n", 80))
	if tr.Follow(&vp) {
		t.Error("detached tracker should not follow")
	}
	if vp.YOffset() != 0 {
		t.Errorf("viewport moved to %d while detached", vp.YOffset())
	}

	tr.ScrollToBottom()
	if !tr.Follow(&vp) || !vp.AtBottom() {
		t.Error("jump to bottom should scroll the viewport")
	}
	if !tr.ObserveViewport(vp) {
		t.Error("viewport at bottom should observe as at bottom")
	}
}
