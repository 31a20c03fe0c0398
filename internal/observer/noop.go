package observer

// NoOp is a zero-value-usable Observer whose methods all do nothing. It is
// the orchestrator's default so callers never need a nil check.
type NoOp struct{}

var _ Observer = NoOp{}

func (NoOp) ZsyncStarted(string)                         {}
func (NoOp) ZsyncComplete()                              {}
func (NoOp) ZsyncFailed(error)                           {}
func (NoOp) PhaseStart(Phase, string, int64)              {}
func (NoOp) PhaseTransferred(Phase, int64)                {}
func (NoOp) PhaseComplete(Phase)                          {}
func (NoOp) RemoteRangesRequested([]RangeSpec)            {}
func (NoOp) ContentRangeDiscrepancy(int64, int64, int64)  {}
