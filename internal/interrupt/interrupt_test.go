package interrupt

import "testing"

func TestPendingEmpty(t *testing.T) {
	c := New()
	defer c.Stop()

	if c.Pending() {
		t.Error("Pending() = true with no signal")
	}
}

func TestTriggerLatchesOnce(t *testing.T) {
	c := New()
	defer c.Stop()

	c.Trigger()
	c.Trigger() // collapses into the single slot

	if !c.Pending() {
		t.Fatal("Pending() = false after Trigger()")
	}
	if c.Pending() {
		t.Error("second Pending() = true, latch should have been consumed")
	}
}

func TestTriggerAfterConsume(t *testing.T) {
	c := New()
	defer c.Stop()

	c.Trigger()
	if !c.Pending() {
		t.Fatal("first latch lost")
	}
	c.Trigger()
	if !c.Pending() {
		t.Error("latch not re-armed after consume")
	}
}
