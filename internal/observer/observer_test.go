package observer_test

import (
	"errors"
	"testing"

	"github.com/keshon/zsync/internal/observer"
)

func TestNoOp_SatisfiesInterfaceWithoutPanicking(t *testing.T) {
	var o observer.Observer = observer.NoOp{}

	o.ZsyncStarted("target.bin")
	o.PhaseStart(observer.PhaseInputRead, "candidate.bin", 100)
	o.PhaseTransferred(observer.PhaseInputRead, 50)
	o.PhaseComplete(observer.PhaseInputRead)
	o.RemoteRangesRequested([]observer.RangeSpec{{First: 0, Last: 9}})
	o.ContentRangeDiscrepancy(0, 9, 20)
	o.ZsyncFailed(errors.New("boom"))
	o.ZsyncComplete()
}

func TestTerminal_PhaseLifecycleWithoutPanicking(t *testing.T) {
	var o observer.Observer = observer.NewTerminal()

	o.ZsyncStarted("target.bin")
	o.PhaseStart(observer.PhaseOutputWrite, "target.bin", 16)
	o.PhaseTransferred(observer.PhaseOutputWrite, 8)
	o.PhaseTransferred(observer.PhaseOutputWrite, 8)
	o.PhaseComplete(observer.PhaseOutputWrite)
	o.ZsyncComplete()
}

func TestPhase_String(t *testing.T) {
	cases := map[observer.Phase]string{
		observer.PhaseControlRead:     "control-read",
		observer.PhaseControlDownload: "control-download",
		observer.PhaseInputRead:       "input-read",
		observer.PhaseOutputWrite:     "output-write",
		observer.PhaseRemoteDownload:  "remote-download",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Fatalf("phase %d: got %q, want %q", phase, got, want)
		}
	}
}
