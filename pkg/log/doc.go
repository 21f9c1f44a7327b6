// Package log provides structured logging for the connection-handover
// coordinator.
//
// The coordinator and its collaborators emit Event values through the Logger
// interface rather than writing to a concrete sink. Applications choose the
// sink: SlogAdapter for console output via log/slog, Recorder for in-memory
// capture, MultiLogger to fan out to several sinks, or NoopLogger to disable
// logging entirely.
//
// Events carry a Severity and a Category plus an optional type-specific
// payload (state transition, store I/O, transport push, or error detail).
// SeverityFatal marks failures that break the handover use case without
// crashing the process; no sink terminates the program.
package log
