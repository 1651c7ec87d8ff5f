// Package service exposes room lifecycle operations to the HTTP API and the
// MCP tool surface.
//
// RoomService wraps the registry with API-shaped responses (epoch-millisecond
// expiry, participant counts from the live transport). It adds no semantics
// of its own: uniqueness, expiry, and capacity all live in the registry and
// the hub.
package service
