// Package scroll decides when the message list may be scrolled for the user.
//
// The tracker only learns about the user's position from user scroll events.
// Programmatic scrolling asks ShouldFollow first, so it never pulls the view
// away from a position the user chose. A send or a running reveal does not
// override that choice; only Pin and ScrollToBottom re-attach the view.
package scroll

import (
	"charm.land/bubbles/v2/viewport"
)

const (
	// DefaultThreshold is the at-bottom distance for pixel-measured containers.
	DefaultThreshold = 100
	// LineThreshold is the at-bottom distance for terminal viewports.
	LineThreshold = 3
)

// Tracker holds the user's scroll intent.
type Tracker struct {
	threshold int
	atBottom  bool
}

// New creates a tracker that starts at the bottom. A non-positive threshold
// uses DefaultThreshold.
func New(threshold int) *Tracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Tracker{threshold: threshold, atBottom: true}
}

// Observe records a user scroll event and returns the new at-bottom state.
// Scrolling away from the bottom detaches the view; scrolling back
// re-attaches it.
func (t *Tracker) Observe(scrollHeight, scrollTop, clientHeight int) bool {
	t.atBottom = scrollHeight-scrollTop-clientHeight < t.threshold
	return t.atBottom
}

// AtBottom reports whether the last observed position was at the bottom.
func (t *Tracker) AtBottom() bool {
	return t.atBottom
}

// Detached reports whether the user scrolled away and has not come back.
func (t *Tracker) Detached() bool {
	return !t.atBottom
}

// ShouldFollow reports whether programmatic scrolling to the bottom is
// allowed, whether or not a reply is in progress.
func (t *Tracker) ShouldFollow() bool {
	return t.atBottom
}

// ScrollToBottom handles the explicit "jump to bottom" action.
func (t *Tracker) ScrollToBottom() {
	t.atBottom = true
}

// Pin re-attaches the view at the start of a new send.
func (t *Tracker) Pin() {
	t.ScrollToBottom()
}

// Threshold returns the at-bottom distance.
func (t *Tracker) Threshold() int {
	return t.threshold
}

// ObserveViewport records a user scroll on a terminal viewport. Heights are
// measured in lines.
func (t *Tracker) ObserveViewport(vp viewport.Model) bool {
	return t.Observe(vp.TotalLineCount(), vp.YOffset(), vp.Height())
}

// Follow scrolls vp to the bottom when ShouldFollow allows it and reports
// whether it did.
func (t *Tracker) Follow(vp *viewport.Model) bool {
	if !t.ShouldFollow() {
		return false
	}
	vp.GotoBottom()
	return true
}
