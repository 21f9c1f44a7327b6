package log

import (
	"time"
)

// Event represents a coordinator log event captured at any layer.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time

	// ConnectionID correlates events belonging to one BLE link (UUID).
	// Empty for events outside any connection.
	ConnectionID string

	// Severity classifies how urgent the event is.
	Severity Severity

	// Category classifies the event type.
	Category Category

	// Message is a short human-readable description.
	Message string

	// Type-specific payload (at most one of these will be set).
	StateChange *StateChangeEvent // pairing state machine transitions
	StoreIO     *StoreIOEvent     // key-value store reads/writes
	Transport   *TransportEvent   // tag-transport pushes
	Error       *ErrorEventData   // failures at any layer
}

// Severity classifies event urgency.
type Severity uint8

const (
	// SeverityDebug is diagnostic detail.
	SeverityDebug Severity = 0
	// SeverityInfo is normal operation.
	SeverityInfo Severity = 1
	// SeverityWarn is a degraded but recoverable condition.
	SeverityWarn Severity = 2
	// SeverityError is a failed operation.
	SeverityError Severity = 3
	// SeverityFatal breaks the advertised use case but does not crash.
	SeverityFatal Severity = 4
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a pairing state machine transition.
	CategoryState Category = 0
	// CategoryStore indicates a persistence operation.
	CategoryStore Category = 1
	// CategoryTransport indicates a tag-transport push.
	CategoryTransport Category = 2
	// CategoryCrypto indicates a confirmation-value derivation.
	CategoryCrypto Category = 3
	// CategoryGatt indicates attribute-server activity.
	CategoryGatt Category = 4
	// CategoryButton indicates physical trigger activity.
	CategoryButton Category = 5
	// CategoryError indicates an error event.
	CategoryError Category = 6
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryStore:
		return "STORE"
	case CategoryTransport:
		return "TRANSPORT"
	case CategoryCrypto:
		return "CRYPTO"
	case CategoryGatt:
		return "GATT"
	case CategoryButton:
		return "BUTTON"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a pairing state machine transition.
type StateChangeEvent struct {
	// OldState is the state before the transition.
	OldState string

	// NewState is the state after the transition.
	NewState string

	// Reason describes what triggered the transition.
	Reason string
}

// StoreIOEvent captures a key-value store operation.
type StoreIOEvent struct {
	// Op is "read" or "write".
	Op string

	// Key is the store key.
	Key string

	// Size is the blob size in bytes.
	Size int
}

// TransportEvent captures a push to the tag transport.
type TransportEvent struct {
	// FileID identifies the target file on the tag.
	FileID uint16

	// Offset is the byte offset of the push.
	Offset int

	// Size is the number of bytes pushed.
	Size int
}

// ErrorEventData captures a failure at any layer.
type ErrorEventData struct {
	// Layer names the component the error originated from.
	Layer string

	// Message is the error text.
	Message string

	// Context is additional free-form context.
	Context string
}

// NewEvent creates an Event with the current timestamp.
func NewEvent(severity Severity, category Category, message string) Event {
	return Event{
		Timestamp: time.Now(),
		Severity:  severity,
		Category:  category,
		Message:   message,
	}
}
