package observer

import (
	"fmt"
	"sync"

	"github.com/keshon/zsync/internal/progress"
)

// Terminal renders one progress.Tracker per active phase, printing a
// spinner line that updates in place. It is the observer the CLI wires in
// by default; tests use NoOp instead.
type Terminal struct {
	mu       sync.Mutex
	trackers map[Phase]*progress.Tracker
}

var _ Observer = (*Terminal)(nil)

// NewTerminal returns a ready-to-use terminal observer.
func NewTerminal() *Terminal {
	return &Terminal{trackers: make(map[Phase]*progress.Tracker)}
}

func (t *Terminal) ZsyncStarted(targetName string) {
	fmt.Printf("zsync: starting %s\n", targetName)
}

func (t *Terminal) ZsyncComplete() {
	fmt.Println("zsync: complete")
}

func (t *Terminal) ZsyncFailed(err error) {
	fmt.Printf("zsync: failed: %v\n", err)
}

func (t *Terminal) PhaseStart(phase Phase, resource string, length int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := phase.String()
	if resource != "" {
		msg = fmt.Sprintf("%s %s", phase.String(), resource)
	}
	t.trackers[phase] = progress.New(length, msg)
}

func (t *Terminal) PhaseTransferred(phase Phase, n int64) {
	t.mu.Lock()
	tr := t.trackers[phase]
	t.mu.Unlock()
	if tr != nil {
		tr.Add(n)
	}
}

func (t *Terminal) PhaseComplete(phase Phase) {
	t.mu.Lock()
	tr := t.trackers[phase]
	delete(t.trackers, phase)
	t.mu.Unlock()
	if tr != nil {
		tr.Finish()
	}
}

func (t *Terminal) RemoteRangesRequested(ranges []RangeSpec) {
	fmt.Printf("zsync: requesting %d range(s)\n", len(ranges))
}

func (t *Terminal) ContentRangeDiscrepancy(first, last, declaredTotal int64) {
	fmt.Printf("zsync: note: Content-Range %d-%d disagrees with declared total %d\n", first, last, declaredTotal)
}
