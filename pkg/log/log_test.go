package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "DEBUG"},
		{SeverityInfo, "INFO"},
		{SeverityWarn, "WARN"},
		{SeverityError, "ERROR"},
		{SeverityFatal, "FATAL"},
		{Severity(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryState, "STATE"},
		{CategoryStore, "STORE"},
		{CategoryTransport, "TRANSPORT"},
		{CategoryCrypto, "CRYPTO"},
		{CategoryGatt, "GATT"},
		{CategoryButton, "BUTTON"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.category.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestNewEventSetsTimestamp(t *testing.T) {
	before := time.Now()
	event := NewEvent(SeverityInfo, CategoryState, "test")
	after := time.Now()

	if event.Timestamp.Before(before) || event.Timestamp.After(after) {
		t.Errorf("NewEvent timestamp %v outside [%v, %v]", event.Timestamp, before, after)
	}
	if event.Message != "test" {
		t.Errorf("Message = %q, want %q", event.Message, "test")
	}
}

func TestMultiLoggerCallsAll(t *testing.T) {
	rec1 := NewRecorder()
	rec2 := NewRecorder()
	rec3 := NewRecorder()

	multi := NewMultiLogger(rec1, rec2, rec3)

	event := NewEvent(SeverityInfo, CategoryTransport, "push")
	event.ConnectionID = "conn-123"
	multi.Log(event)

	for i, rec := range []*Recorder{rec1, rec2, rec3} {
		events := rec.Events()
		if len(events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(events))
			continue
		}
		if events[0].ConnectionID != "conn-123" {
			t.Errorf("logger %d: ConnectionID = %q, want %q", i, events[0].ConnectionID, "conn-123")
		}
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()

	// Should not panic with empty logger list
	multi.Log(NewEvent(SeverityInfo, CategoryState, "noop"))
}

func TestRecorderReset(t *testing.T) {
	rec := NewRecorder()
	rec.Log(NewEvent(SeverityInfo, CategoryState, "first"))
	rec.Log(NewEvent(SeverityWarn, CategoryStore, "second"))

	if got := len(rec.Events()); got != 2 {
		t.Fatalf("got %d events, want 2", got)
	}

	rec.Reset()
	if got := len(rec.Events()); got != 0 {
		t.Errorf("after Reset: got %d events, want 0", got)
	}
}

func TestSlogAdapterWritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	event := NewEvent(SeverityWarn, CategoryStore, "write failed")
	event.StoreIO = &StoreIOEvent{Op: "write", Key: "bonding", Size: 88}
	adapter.Log(event)

	out := buf.String()
	for _, want := range []string{"write failed", "category=STORE", "key=bonding", "op=write"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogAdapterErrorPayload(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	event := NewEvent(SeverityFatal, CategoryError, "derivation failed")
	event.Error = &ErrorEventData{Layer: "oob", Message: "cmac setup", Context: "OobDataReady"}
	adapter.Log(event)

	out := buf.String()
	for _, want := range []string{"error_layer=oob", "error_msg=\"cmac setup\"", "error_context=OobDataReady"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
