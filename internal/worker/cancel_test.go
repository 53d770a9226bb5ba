package worker

import "testing"

func TestCancelFlag(t *testing.T) {
	var f CancelFlag
	if f.IsSet() {
		t.Fatal("flag set initially")
	}
	if !f.Cancel() {
		t.Error("first Cancel should report the transition")
	}
	if f.Cancel() {
		t.Error("second Cancel should be a no-op")
	}
	if !f.IsSet() {
		t.Error("flag should stay set")
	}
}
