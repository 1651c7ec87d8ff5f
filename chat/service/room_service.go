package service

import (
	"context"
	"time"
)

// RoomService defines the read/create surface over the room registry used by
// the REST API and the MCP tools. The realtime relay itself talks to the
// registry directly.
type RoomService interface {
	CreateRoom(ctx context.Context) (*RoomInfo, error)
	GetRoom(ctx context.Context, passcode string) (*RoomInfo, error)
	GetRoomByKey(ctx context.Context, roomKey string) (*RoomInfo, error)
	ListRooms(ctx context.Context) ([]*RoomInfo, error)
	Stats(ctx context.Context) (*ServerStats, error)
}

// PresenceTracker reports live transport membership. Implemented by the
// WebSocket hub.
type PresenceTracker interface {
	MembersOf(roomKey string) []string
	ConnectionCount() int
}

// RoomInfo is the API view of a live room. ExpireAt is epoch milliseconds to
// match the realtime wire contract.
type RoomInfo struct {
	Passcode     string    `json:"passcode"`
	RoomKey      string    `json:"roomKey"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpireAt     int64     `json:"expireAt"`
	Participants int       `json:"participants"`
}

// ServerStats is a small operational snapshot.
type ServerStats struct {
	ActiveRooms int `json:"activeRooms"`
	Connections int `json:"connections"`
}
