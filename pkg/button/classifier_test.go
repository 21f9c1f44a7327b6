package button

import (
	"errors"
	"testing"
	"time"
)

func TestShortPressNotifies(t *testing.T) {
	var notified, reset bool
	c := NewClassifier(Config{
		Notify: func() error { notified = true; return nil },
		Reset:  func() error { reset = true; return nil },
	})

	// 200ms at the default 100ms period.
	c.Press()
	c.Tick()
	c.Tick()
	if err := c.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if !notified {
		t.Error("short press did not dispatch notify")
	}
	if reset {
		t.Error("short press dispatched reset")
	}
}

func TestLongPressResets(t *testing.T) {
	var notified, reset bool
	c := NewClassifier(Config{
		Notify: func() error { notified = true; return nil },
		Reset:  func() error { reset = true; return nil },
	})

	// 6000ms at the default 100ms period, past the 5000ms threshold.
	c.Press()
	for i := 0; i < 60; i++ {
		c.Tick()
	}
	if err := c.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if !reset {
		t.Error("long press did not dispatch reset")
	}
	if notified {
		t.Error("long press dispatched notify")
	}
}

func TestThresholdIsExclusive(t *testing.T) {
	c := NewClassifier(Config{})

	// Exactly at the threshold stays a notify; classification requires
	// the duration to exceed it.
	if got := c.Classify(DefaultLongPressThreshold); got != ActionNotify {
		t.Errorf("Classify(threshold) = %s, want NOTIFY", got)
	}
	if got := c.Classify(DefaultLongPressThreshold + time.Millisecond); got != ActionReset {
		t.Errorf("Classify(threshold+1ms) = %s, want RESET", got)
	}
	if got := c.Classify(0); got != ActionNotify {
		t.Errorf("Classify(0) = %s, want NOTIFY", got)
	}
}

func TestReleaseWithoutPressIsIgnored(t *testing.T) {
	called := false
	c := NewClassifier(Config{
		Notify: func() error { called = true; return nil },
	})

	if err := c.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if called {
		t.Error("release without press dispatched an action")
	}
}

func TestDispatchErrorPropagates(t *testing.T) {
	wantErr := errors.New("reset failed")
	c := NewClassifier(Config{
		Reset: func() error { return wantErr },
	})

	c.Press()
	for i := 0; i < 60; i++ {
		c.Tick()
	}
	if err := c.Release(); !errors.Is(err, wantErr) {
		t.Errorf("Release error = %v, want %v", err, wantErr)
	}
}

func TestCustomPeriodAndThreshold(t *testing.T) {
	var reset bool
	c := NewClassifier(Config{
		TickPeriod:         time.Second,
		LongPressThreshold: 2 * time.Second,
		Reset:              func() error { reset = true; return nil },
	})

	c.Press()
	c.Tick()
	c.Tick()
	c.Tick()
	if err := c.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if !reset {
		t.Error("3s press with 2s threshold did not dispatch reset")
	}
}
