package worker

import "sync/atomic"

// CancelFlag is set once by the coordinator and checked by every worker
// before it starts a file. It never resets.
type CancelFlag struct {
	set atomic.Bool
}

// Cancel sets the flag. It reports whether this call was the one that set it.
func (f *CancelFlag) Cancel() bool {
	return f.set.CompareAndSwap(false, true)
}

// IsSet reports whether the flag has been set
func (f *CancelFlag) IsSet() bool {
	return f.set.Load()
}
