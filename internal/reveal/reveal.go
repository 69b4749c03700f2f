// Package reveal discloses an already-received reply progressively.
//
// A reply is split into segments once. Each tick reveals one more segment,
// so for a given text the sequence of revealed prefixes is always the same.
// Cursor is the pure step function; Run drives a cursor with a timer for
// callers outside the Bubble Tea loop.
package reveal

import (
	"strings"
	"sync"
	"time"

	"github.com/rivo/uniseg"
)

const (
	// DefaultInterval is the delay between reveal ticks.
	DefaultInterval = 10 * time.Millisecond
	// DefaultChunkSize is the number of grapheme clusters revealed per tick
	// when the remaining text has no newline or sentence boundary.
	DefaultChunkSize = 3
)

var boundaries = []string{"\n", ". ", "? ", "! "}

// Segments splits text into reveal segments. Segments end just after a
// newline or sentence boundary; text after the last boundary is cut into
// chunks of chunkSize grapheme clusters. Joining the segments yields text.
func Segments(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var segs []string
	rest := text
	for rest != "" {
		end := nextBoundary(rest)
		if end < 0 {
			segs = append(segs, chunkGraphemes(rest, chunkSize)...)
			break
		}
		segs = append(segs, rest[:end])
		rest = rest[end:]
	}
	return segs
}

// nextBoundary returns the offset just past the earliest boundary in s, or -1.
func nextBoundary(s string) int {
	best := -1
	for _, b := range boundaries {
		i := strings.Index(s, b)
		if i < 0 {
			continue
		}
		if end := i + len(b); best < 0 || end < best {
			best = end
		}
	}
	return best
}

func chunkGraphemes(s string, size int) []string {
	var chunks []string
	state := -1
	start, n := 0, 0
	offset := 0
	rest := s
	for rest != "" {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		offset += len(cluster)
		n++
		if n == size {
			chunks = append(chunks, s[start:offset])
			start, n = offset, 0
		}
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

// Cursor tracks how much of FullText has been revealed. Revealed is a byte
// offset that only grows and never exceeds len(FullText).
type Cursor struct {
	FullText string
	Revealed int

	segments []string
	next     int
}

// NewCursor creates a cursor at the start of text.
func NewCursor(text string, chunkSize int) *Cursor {
	return &Cursor{
		FullText: text,
		segments: Segments(text, chunkSize),
	}
}

// Step reveals the next segment and returns the revealed prefix. done is true
// once the whole text is revealed; an empty text is done on the first step.
func (c *Cursor) Step() (snapshot string, done bool) {
	if c.next < len(c.segments) {
		c.Revealed += len(c.segments[c.next])
		c.next++
	}
	return c.FullText[:c.Revealed], c.Done()
}

// Done reports whether the whole text has been revealed.
func (c *Cursor) Done() bool {
	return c.Revealed >= len(c.FullText)
}

// Snapshot returns the currently revealed prefix.
func (c *Cursor) Snapshot() string {
	return c.FullText[:c.Revealed]
}

// Options tunes a timer-driven reveal.
type Options struct {
	Interval  time.Duration
	ChunkSize int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// Handle controls a running reveal.
type Handle struct {
	cancel     chan struct{}
	cancelOnce sync.Once
	done       chan struct{}

	mu        sync.Mutex
	completed bool
}

// Cancel stops the reveal. Cancelling a finished or already cancelled reveal
// does nothing.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(func() {
		close(h.cancel)
	})
}

// Done is closed when the reveal goroutine exits.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Completed reports whether onComplete ran.
func (h *Handle) Completed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.completed
}

// Run reveals text on a timer. onSnapshot receives every revealed prefix in
// order; onComplete runs once with the full text after the last snapshot,
// unless the reveal is cancelled first. Both callbacks run on the reveal
// goroutine.
func Run(text string, opts Options, onSnapshot func(string), onComplete func(string)) *Handle {
	opts = opts.withDefaults()
	h := &Handle{
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	cur := NewCursor(text, opts.ChunkSize)

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-h.cancel:
				return
			case <-ticker.C:
			}

			select {
			case <-h.cancel:
				return
			default:
			}

			snap, done := cur.Step()
			if onSnapshot != nil {
				onSnapshot(snap)
			}
			if done {
				h.mu.Lock()
				h.completed = true
				h.mu.Unlock()
				if onComplete != nil {
					onComplete(text)
				}
				return
			}
		}
	}()

	return h
}
