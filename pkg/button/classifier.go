package button

import (
	"sync"
	"time"

	"github.com/handover-protocol/handover-go/pkg/log"
)

// Timing defaults, matching the physical device.
const (
	// DefaultTickPeriod is the period of the tick source.
	DefaultTickPeriod = 100 * time.Millisecond

	// DefaultLongPressThreshold separates a reset hold from a notify press.
	DefaultLongPressThreshold = 5 * time.Second
)

// Action is the classification of a completed press/release pair.
type Action uint8

const (
	// ActionNotify is a short press: send the notification pulse.
	ActionNotify Action = iota

	// ActionReset is a long press: clear bonding state.
	ActionReset
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionNotify:
		return "NOTIFY"
	case ActionReset:
		return "RESET"
	default:
		return "UNKNOWN"
	}
}

// Config carries the classifier's construction parameters.
type Config struct {
	// TickPeriod overrides DefaultTickPeriod when positive.
	TickPeriod time.Duration

	// LongPressThreshold overrides DefaultLongPressThreshold when positive.
	LongPressThreshold time.Duration

	// Notify is dispatched on a short press.
	Notify func() error

	// Reset is dispatched on a long press.
	Reset func() error

	// Logger receives button events. Nil disables logging.
	Logger log.Logger
}

// Classifier converts press/release edge pairs plus elapsed tick time into
// notify or reset dispatches. It keeps no state across a press/release pair
// beyond the press-start tick; re-entrant presses are not coalesced (the
// physical input source delivers at most one pair in flight).
type Classifier struct {
	mu sync.Mutex

	period    time.Duration
	threshold time.Duration
	notify    func() error
	reset     func() error
	logger    log.Logger

	ticks      uint32
	pressStart uint32
	pressed    bool
}

// NewClassifier creates a classifier from the given configuration.
func NewClassifier(cfg Config) *Classifier {
	period := cfg.TickPeriod
	if period <= 0 {
		period = DefaultTickPeriod
	}
	threshold := cfg.LongPressThreshold
	if threshold <= 0 {
		threshold = DefaultLongPressThreshold
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Classifier{
		period:    period,
		threshold: threshold,
		notify:    cfg.Notify,
		reset:     cfg.Reset,
		logger:    logger,
	}
}

// Tick advances the classifier's time base by one period. Driven by the
// platform's periodic timer.
func (c *Classifier) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
}

// Press records the press edge.
func (c *Classifier) Press() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pressStart = c.ticks
	c.pressed = true
}

// Release records the release edge, classifies the press by its elapsed
// tick time, and dispatches synchronously on the caller's goroutine.
// A release without a preceding press is ignored.
func (c *Classifier) Release() error {
	c.mu.Lock()
	if !c.pressed {
		c.mu.Unlock()
		return nil
	}
	elapsed := time.Duration(c.ticks-c.pressStart) * c.period
	c.pressed = false
	notify, reset := c.notify, c.reset
	c.mu.Unlock()

	action := c.Classify(elapsed)
	event := log.NewEvent(log.SeverityInfo, log.CategoryButton, "press classified as "+action.String())
	c.logger.Log(event)

	switch action {
	case ActionReset:
		if reset != nil {
			return reset()
		}
	case ActionNotify:
		if notify != nil {
			return notify()
		}
	}
	return nil
}

// Classify maps a press duration to an action.
func (c *Classifier) Classify(duration time.Duration) Action {
	if duration > c.threshold {
		return ActionReset
	}
	return ActionNotify
}
