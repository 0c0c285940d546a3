package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("Resolving topology...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Computing networks...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerCancelledByContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Computing networks...")
	s.Start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancelled after its context ends")
	}
	s.Stop()
}

func TestSpinnerCancelledByTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Aggregating attributes...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancelled after its context times out")
	}
	s.Stop()
}

func TestSpinnerUpdateMessageTracksWidth(t *testing.T) {
	s := newSpinner("Resolving...")
	s.Start()

	long := "Computing networks across the whole basin..."
	s.UpdateMessage(long)
	time.Sleep(100 * time.Millisecond)
	s.UpdateMessage("Exporting...")
	s.Stop()

	// The clear width must cover the widest message ever shown, or a
	// stage switch to a shorter message leaves residue on the line.
	if s.width < len(long) {
		t.Errorf("width = %d, want at least %d", s.width, len(long))
	}
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Building...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Built")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Building...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Build failed")
}
