package gatt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handover-protocol/handover-go/pkg/store"
)

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	notifications []notification
	err           error
}

type notification struct {
	connID uint16
	handle uint16
	value  []byte
}

func (n *recordingNotifier) Notify(connID uint16, handle uint16, value []byte) error {
	if n.err != nil {
		return n.err
	}
	v := make([]byte, len(value))
	copy(v, value)
	n.notifications = append(n.notifications, notification{connID: connID, handle: handle, value: v})
	return nil
}

func newTestServer(t *testing.T) (*Server, *recordingNotifier, *store.Store) {
	t.Helper()
	notifier := &recordingNotifier{}
	st := store.New(store.NewMemoryKV())
	server := NewServer(Config{
		Store:      st,
		Notifier:   notifier,
		PulseWidth: time.Millisecond,
	})
	return server, notifier, st
}

func TestTableReadErrors(t *testing.T) {
	table := NewTable(&Attribute{Handle: 0x0001, Value: []byte{1, 2, 3}, MaxLen: 3})

	_, err := table.Read(0x0099, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = table.Read(0x0001, 3, 10)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	value, err := table.Read(0x0001, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, value)

	// A shorter requested length truncates.
	value, err = table.Read(0x0001, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, value)
}

func TestTableWriteValidatesLength(t *testing.T) {
	table := NewTable(&Attribute{Handle: 0x0001, Value: []byte{0}, MaxLen: 2})

	assert.ErrorIs(t, table.Write(0x0099, []byte{1}), ErrInvalidHandle)
	assert.ErrorIs(t, table.Write(0x0001, []byte{1, 2, 3}), ErrInvalidAttributeLength)

	require.NoError(t, table.Write(0x0001, []byte{7, 8}))
	value, err := table.Value(0x0001)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 8}, value)
}

func TestCCCDWriteUpdatesFlagAndStore(t *testing.T) {
	server, _, st := newTestServer(t)

	require.NoError(t, server.Write(ReportCCCDHandle, []byte{0x01, 0x00}))
	assert.True(t, server.Subscribed())

	persisted, ok, err := st.LoadCCCD()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NotificationEnabled, persisted)

	// Unsubscribe clears the flag.
	require.NoError(t, server.Write(ReportCCCDHandle, []byte{0x00, 0x00}))
	assert.False(t, server.Subscribed())
}

func TestPulseNoopWhileUnsubscribed(t *testing.T) {
	server, notifier, _ := newTestServer(t)
	server.HandleConnectionStatus(0x0042, true)

	require.NoError(t, server.SendNotificationPulse())
	assert.Empty(t, notifier.notifications)
}

func TestPulseNoopWhileDisconnected(t *testing.T) {
	server, notifier, _ := newTestServer(t)
	require.NoError(t, server.Write(ReportCCCDHandle, []byte{0x01, 0x00}))

	require.NoError(t, server.SendNotificationPulse())
	assert.Empty(t, notifier.notifications)
}

func TestPulseSendsActiveThenInactive(t *testing.T) {
	server, notifier, _ := newTestServer(t)
	server.HandleConnectionStatus(0x0042, true)
	require.NoError(t, server.Write(ReportCCCDHandle, []byte{0x01, 0x00}))

	require.NoError(t, server.SendNotificationPulse())

	require.Len(t, notifier.notifications, 2)
	assert.Equal(t, uint16(0x0042), notifier.notifications[0].connID)
	assert.Equal(t, ReportValueHandle, notifier.notifications[0].handle)
	assert.Equal(t, []byte{0x01}, notifier.notifications[0].value)
	assert.Equal(t, []byte{0x00}, notifier.notifications[1].value)

	// The table value reverted to inactive.
	value, err := server.table.Value(ReportValueHandle)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, value)
}

func TestConnectionStatusForwardsToHooks(t *testing.T) {
	server, _, _ := newTestServer(t)

	var gotUp uint16
	downCalled := false
	server.SetLinkHooks(
		func(connID uint16) { gotUp = connID },
		func() { downCalled = true },
	)

	server.HandleConnectionStatus(0x0007, true)
	assert.Equal(t, uint16(0x0007), gotUp)
	assert.Equal(t, uint16(0x0007), server.ConnectionID())

	server.HandleConnectionStatus(0x0007, false)
	assert.True(t, downCalled)
	assert.Equal(t, uint16(0), server.ConnectionID())
}

func TestSeedAndRestoreSubscription(t *testing.T) {
	server, _, st := newTestServer(t)

	server.SeedSubscription(NotificationEnabled)
	assert.True(t, server.Subscribed())

	// Seeding must not write the store; it mirrors already-persisted state.
	_, ok, err := st.LoadCCCD()
	require.NoError(t, err)
	assert.False(t, ok)

	// The live attribute value reflects the seeded flag.
	value, err := server.Read(ReportCCCDHandle, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00}, value)

	// Overwrite the live table, then restore from RAM.
	require.NoError(t, server.table.Write(ReportCCCDHandle, []byte{0x00, 0x00}))
	server.RestoreSubscription()
	value, err = server.Read(ReportCCCDHandle, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00}, value)
}
