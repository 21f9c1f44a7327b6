package gatt

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/handover-protocol/handover-go/pkg/log"
	"github.com/handover-protocol/handover-go/pkg/store"
)

// Well-known handles of the notification report characteristic and its
// client configuration descriptor.
const (
	// ReportValueHandle is the notified report value attribute.
	ReportValueHandle uint16 = 0x0009

	// ReportCCCDHandle is the report's client characteristic configuration
	// descriptor.
	ReportCCCDHandle uint16 = 0x000A
)

// NotificationEnabled is the CCCD bit a peer sets to subscribe to
// notifications.
const NotificationEnabled uint16 = 0x0001

// DefaultPulseWidth is how long the notified report stays on the active
// value before reverting.
const DefaultPulseWidth = 30 * time.Millisecond

// Notifier sends a handle-value notification over the live link. Satisfied
// by the wireless-stack adapter.
type Notifier interface {
	Notify(connectionID uint16, handle uint16, value []byte) error
}

// Config carries the server's construction parameters.
type Config struct {
	// Table is the attribute table served to peers. If nil, a table with
	// the report characteristic and its CCCD is created.
	Table *Table

	// Store persists the subscription flag. Required.
	Store *store.Store

	// Notifier delivers notifications to the peer. Required.
	Notifier Notifier

	// PulseWidth overrides DefaultPulseWidth when positive.
	PulseWidth time.Duration

	// Logger receives attribute-server events. Nil disables logging.
	Logger log.Logger
}

// Server adapts the wireless stack's attribute-server callbacks. It owns
// the connection handle (0 while disconnected), mirrors the peer's
// notification subscription in RAM and in the store, and produces the
// momentary notification pulse.
type Server struct {
	mu sync.Mutex

	table      *Table
	store      *store.Store
	notifier   Notifier
	logger     log.Logger
	pulseWidth time.Duration

	connectionID uint16
	connUUID     string
	cccd         uint16

	onLinkUp   func(connectionID uint16)
	onLinkDown func()
}

// NewServer creates an attribute server from the given configuration.
func NewServer(cfg Config) *Server {
	table := cfg.Table
	if table == nil {
		table = NewTable(
			&Attribute{Handle: ReportValueHandle, Value: []byte{0x00}, MaxLen: 1},
			&Attribute{Handle: ReportCCCDHandle, Value: []byte{0x00, 0x00}, MaxLen: 2},
		)
	}
	pulse := cfg.PulseWidth
	if pulse <= 0 {
		pulse = DefaultPulseWidth
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Server{
		table:      table,
		store:      cfg.Store,
		notifier:   cfg.Notifier,
		logger:     logger,
		pulseWidth: pulse,
	}
}

// SetLinkHooks installs callbacks invoked after the server processed a
// connection status change. Used to forward link events to the coordinator.
func (s *Server) SetLinkHooks(onUp func(connectionID uint16), onDown func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLinkUp = onUp
	s.onLinkDown = onDown
}

// HandleConnectionStatus records a connect or disconnect reported by the
// stack and forwards it to the installed hooks.
func (s *Server) HandleConnectionStatus(connectionID uint16, connected bool) {
	s.mu.Lock()
	var hook func()
	if connected {
		s.connectionID = connectionID
		s.connUUID = uuid.New().String()
		s.logEvent(log.SeverityInfo, "peer connected")
		if up := s.onLinkUp; up != nil {
			hook = func() { up(connectionID) }
		}
	} else {
		s.connectionID = 0
		s.logEvent(log.SeverityInfo, "peer disconnected")
		s.connUUID = ""
		if down := s.onLinkDown; down != nil {
			hook = down
		}
	}
	s.mu.Unlock()

	// Hooks run unlocked: they re-enter the coordinator which may call back
	// into this server.
	if hook != nil {
		hook()
	}
}

// ConnectionID returns the current link handle, 0 while disconnected.
func (s *Server) ConnectionID() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectionID
}

// Read services a peer read request against the attribute table.
func (s *Server) Read(handle uint16, offset, maxLen int) ([]byte, error) {
	return s.table.Read(handle, offset, maxLen)
}

// Write services a peer write request. A write to the report's CCCD
// additionally updates the subscription flag in RAM and persists it;
// persistence failure is logged only.
func (s *Server) Write(handle uint16, value []byte) error {
	if err := s.table.Write(handle, value); err != nil {
		return err
	}
	if handle == ReportCCCDHandle && len(value) >= store.CCCDSize {
		flag := binary.LittleEndian.Uint16(value)

		s.mu.Lock()
		s.cccd = flag
		s.mu.Unlock()

		if err := s.store.SaveCCCD(flag); err != nil {
			event := log.NewEvent(log.SeverityWarn, log.CategoryError, "could not persist subscription flag")
			event.Error = &log.ErrorEventData{Layer: "gatt", Message: err.Error()}
			s.logger.Log(event)
		}
	}
	return nil
}

// Subscribed reports whether the peer's subscription flag has the
// notification bit set.
func (s *Server) Subscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cccd&NotificationEnabled != 0
}

// SeedSubscription installs a restored subscription flag into RAM and the
// live attribute table without persisting it again. Used at startup when a
// prior bond is restored.
func (s *Server) SeedSubscription(value uint16) {
	s.mu.Lock()
	s.cccd = value
	s.mu.Unlock()
	s.applyCCCD(value)
}

// RestoreSubscription re-applies the in-RAM subscription flag to the live
// attribute table, resuming the bonded peer's prior subscription without a
// new CCCD write.
func (s *Server) RestoreSubscription() {
	s.mu.Lock()
	value := s.cccd
	s.mu.Unlock()
	s.applyCCCD(value)
}

func (s *Server) applyCCCD(value uint16) {
	raw := make([]byte, store.CCCDSize)
	binary.LittleEndian.PutUint16(raw, value)
	// The CCCD attribute always accepts its fixed size; an error here means
	// the table was built without it, which is a construction bug.
	if err := s.table.Write(ReportCCCDHandle, raw); err != nil {
		panic("gatt: attribute table has no CCCD attribute: " + err.Error())
	}
}

// SendNotificationPulse notifies the subscribed peer with the active report
// value, then reverts to inactive after the configured pulse width. No-op
// while unsubscribed or disconnected. The pulse width is a small fixed
// bound, so blocking here stays bounded too.
func (s *Server) SendNotificationPulse() error {
	s.mu.Lock()
	connID := s.connectionID
	subscribed := s.cccd&NotificationEnabled != 0
	s.mu.Unlock()

	if !subscribed || connID == 0 {
		return nil
	}

	if err := s.table.Write(ReportValueHandle, []byte{0x01}); err != nil {
		return err
	}
	if err := s.notifier.Notify(connID, ReportValueHandle, []byte{0x01}); err != nil {
		return err
	}
	time.Sleep(s.pulseWidth)
	if err := s.table.Write(ReportValueHandle, []byte{0x00}); err != nil {
		return err
	}
	if err := s.notifier.Notify(connID, ReportValueHandle, []byte{0x00}); err != nil {
		return err
	}
	s.logEvent(log.SeverityDebug, "notification pulse sent")
	return nil
}

// logEvent emits a gatt-category event tagged with the link's correlation
// id. Caller must hold the mutex or tolerate a racy read of connUUID.
func (s *Server) logEvent(severity log.Severity, msg string) {
	event := log.NewEvent(severity, log.CategoryGatt, msg)
	event.ConnectionID = s.connUUID
	s.logger.Log(event)
}
