package reveal

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		want      []string
	}{
		{"empty", "", 3, nil},
		{"sentences", "Hi. How are you? Fine! Ok", 3, []string{"Hi. ", "How are you? ", "Fine! ", "Ok"}},
		{"newlines", "one\ntwo\nthree", 3, []string{"one\n", "two\n", "thr", "ee"}},
		{"no boundary", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"period without space", "v1.2.3", 2, []string{"v1", ".2", ".3"}},
		{"trailing boundary", "Done.\n", 3, []string{"Done.\n"}},
		{"zero chunk uses default", "abcdefg", 0, []string{"abc", "def", "g"}},
		{"earliest boundary wins", "a! b. c", 3, []string{"a! ", "b. ", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segments(tt.text, tt.chunkSize)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("Segments(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSegments_Reassemble(t *testing.T) {
	inputs := []string{
		"plain text with no punctuation at all",
		"Line one.\nLine two? Yes! And a tail",
		"```go\nfmt.Println(\"hi\")\n```\n",
		"héllo wörld ñandú",
		"👋🏽 family: 👨‍👩‍👧‍👦 flags 🇳🇬🇬🇧",
	}
	for _, in := range inputs {
		for size := 1; size <= 5; size++ {
			if got := strings.Join(Segments(in, size), ""); got != in {
				t.Errorf("Segments(%q, %d) reassembled to %q", in, size, got)
			}
		}
	}
}

func TestSegments_GraphemeSafe(t *testing.T) {
	family := "👨‍👩‍👧‍👦"
	segs := Segments(family+family+"x", 1)

	want := []string{family, family, "x"}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments %q, want %d", len(segs), segs, len(want))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, segs[i], want[i])
		}
	}
}

func TestCursor_Step(t *testing.T) {
	text := "Hello there. This is a longer reply without more stops"
	c := NewCursor(text, 3)

	var lengths []int
	completions := 0
	for i := 0; i < 1000; i++ {
		snap, done := c.Step()
		if !strings.HasPrefix(text, snap) {
			t.Fatalf("snapshot %q is not a prefix", snap)
		}
		lengths = append(lengths, len(snap))
		if done {
			completions++
			break
		}
	}

	if completions != 1 {
		t.Fatalf("cursor never completed")
	}
	for i := 1; i < len(lengths); i++ {
		if lengths[i] < lengths[i-1] {
			t.Errorf("revealed length decreased at step %d: %v", i, lengths)
		}
	}
	if last := lengths[len(lengths)-1]; last != len(text) {
		t.Errorf("final length = %d, want %d", last, len(text))
	}
	if lengths[0] != len("Hello there. ") {
		t.Errorf("first snapshot length = %d, want first sentence", lengths[0])
	}
	if !c.Done() || c.Snapshot() != text {
		t.Error("cursor should report done with full snapshot")
	}

	snap, done := c.Step()
	if snap != text || !done || c.Revealed != len(text) {
		t.Error("stepping a finished cursor should be stable")
	}
}

func TestCursor_EmptyText(t *testing.T) {
	c := NewCursor("", 3)
	snap, done := c.Step()
	if snap != "" || !done {
		t.Errorf("empty text: Step() = %q, %v; want \"\", true", snap, done)
	}
}

func TestCursor_Deterministic(t *testing.T) {
	text := "Same input. Same output\nevery single time, no randomness"
	run := func() []string {
		c := NewCursor(text, 4)
		var snaps []string
		for {
			snap, done := c.Step()
			snaps = append(snaps, snap)
			if done {
				return snaps
			}
		}
	}

	first, second := run(), run()
	if strings.Join(first, "\x00") != strings.Join(second, "\x00") {
		t.Error("two runs over the same text produced different snapshots")
	}
}

type recorder struct {
	mu        sync.Mutex
	snapshots []string
	completes []string
}

func (r *recorder) snapshot(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recorder) complete(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completes = append(r.completes, s)
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("reveal did not finish")
	}
}

func TestRun_CompletesOnce(t *testing.T) {
	text := "First line.\nSecond line has more words in it"
	rec := &recorder{}

	h := Run(text, Options{Interval: time.Millisecond, ChunkSize: 5}, rec.snapshot, rec.complete)
	waitDone(t, h)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if len(rec.completes) != 1 || rec.completes[0] != text {
		t.Fatalf("completes = %q, want exactly one with full text", rec.completes)
	}
	if !h.Completed() {
		t.Error("Completed() should be true")
	}

	want := len(Segments(text, 5))
	if len(rec.snapshots) != want {
		t.Errorf("got %d snapshots, want %d", len(rec.snapshots), want)
	}
	if rec.snapshots[len(rec.snapshots)-1] != text {
		t.Errorf("last snapshot = %q", rec.snapshots[len(rec.snapshots)-1])
	}

	h.Cancel()
	h.Cancel()
}

func TestRun_CancelledNeverCompletes(t *testing.T) {
	old := &recorder{}
	h := Run(strings.Repeat("x", 3000), Options{Interval: time.Hour}, old.snapshot, old.complete)
	h.Cancel()
	h.Cancel()
	waitDone(t, h)

	newer := &recorder{}
	h2 := Run("short", Options{Interval: time.Millisecond}, newer.snapshot, newer.complete)
	waitDone(t, h2)

	old.mu.Lock()
	defer old.mu.Unlock()
	if len(old.completes) != 0 {
		t.Errorf("cancelled reveal completed %d times", len(old.completes))
	}
	if h.Completed() {
		t.Error("cancelled reveal reports completed")
	}

	newer.mu.Lock()
	defer newer.mu.Unlock()
	if len(newer.completes) != 1 {
		t.Errorf("newer reveal completed %d times, want 1", len(newer.completes))
	}
}

func TestRun_NilCallbacks(t *testing.T) {
	h := Run("abc", Options{Interval: time.Millisecond}, nil, nil)
	waitDone(t, h)
	if !h.Completed() {
		t.Error("reveal with nil callbacks should still complete")
	}
}
