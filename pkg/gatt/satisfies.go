package gatt

import "github.com/handover-protocol/handover-go/pkg/coordinator"

// Compile-time check: *Server implements the coordinator's attribute-server
// surface.
var _ coordinator.AttributeServer = (*Server)(nil)
