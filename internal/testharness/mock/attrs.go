package mock

import "sync"

// AttributeServer is a recording mock of the coordinator's attribute-server
// surface.
type AttributeServer struct {
	mu sync.Mutex

	// Seeded collects values passed to SeedSubscription.
	Seeded []uint16

	// Restores counts RestoreSubscription invocations.
	Restores int

	// Pulses counts SendNotificationPulse invocations.
	Pulses int

	// PulseErr fails SendNotificationPulse when non-nil.
	PulseErr error
}

// NewAttributeServer creates an empty recording attribute server.
func NewAttributeServer() *AttributeServer {
	return &AttributeServer{}
}

// SeedSubscription records the seeded value.
func (a *AttributeServer) SeedSubscription(value uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Seeded = append(a.Seeded, value)
}

// RestoreSubscription records the invocation.
func (a *AttributeServer) RestoreSubscription() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Restores++
}

// SendNotificationPulse records the invocation.
func (a *AttributeServer) SendNotificationPulse() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.PulseErr != nil {
		return a.PulseErr
	}
	a.Pulses++
	return nil
}
