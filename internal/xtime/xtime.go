// Package xtime provides named-region timing instrumentation for
// verbose builds: Start marks the beginning of a region and returns a
// closure that stops it, accumulating elapsed time per label so it can
// be dumped in one summary at the end of a build.
package xtime

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Tracker accumulates elapsed time per label across however many times
// each region runs.
type Tracker struct {
	mu    sync.Mutex
	total map[string]time.Duration
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{total: make(map[string]time.Duration)}
}

// Start marks the beginning of a named region and returns a function
// that stops it and folds the elapsed time into the label's total.
func (t *Tracker) Start(label string) func() {
	begin := time.Now()
	return func() {
		elapsed := time.Since(begin)
		t.mu.Lock()
		t.total[label] += elapsed
		t.mu.Unlock()
	}
}

// Dump writes every label's accumulated duration to w, sorted by
// label for deterministic output.
func (t *Tracker) Dump(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	labels := make([]string, 0, len(t.total))
	for l := range t.total {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(w, "crunch: %s: %s\n", l, t.total[l])
	}
}
