// Package registry provides room lifecycle management for the pairchat relay.
//
// The registry package implements:
//   - Passcode and roomKey allocation
//   - A bidirectional passcode/roomKey index over live rooms
//   - Time-bounded room expiry via scheduled timers
//   - Lookup by passcode or roomKey
//
// Core Types:
//
// Registry is the single in-process authority over room existence. Room is an
// immutable record of a live room: its 6-digit passcode, its 128-bit hex
// roomKey, and its expiry instant.
//
// Identifiers:
//
// Passcodes are 6 ASCII digits sampled uniformly from 100000-999999 and kept
// unique among live rooms by resampling on collision (capped, with an explicit
// exhaustion error). RoomKeys carry 128 bits of cryptographic randomness and
// are not checked for uniqueness; collision probability is negligible.
//
// Expiry:
//
// Every room is created with a fixed TTL (40 minutes by default). A timer
// scheduled at creation removes the room from both maps when it fires and then
// invokes the registered ExpiryFunc exactly once, letting the transport notify
// and detach any remaining members. A room that was already removed makes the
// timer a no-op.
//
// Concurrency:
//
// All registry state is guarded by a single mutex, so the two maps are always
// updated as one atomic pair and a torn read between them is impossible.
//
// Usage:
//
//	reg := registry.New(registry.Options{})
//	reg.SetExpiryFunc(func(room *registry.Room) {
//		// notify members, detach them from the room group
//	})
//
//	room, err := reg.CreateRoom()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	room, err = reg.LookupByPasscode(" 123456 ")
package registry
