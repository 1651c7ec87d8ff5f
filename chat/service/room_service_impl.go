package service

import (
	"context"
	"fmt"

	"github.com/wricardo/pairchat/chat/registry"
)

// roomServiceImpl implements the RoomService interface
type roomServiceImpl struct {
	rooms    *registry.Registry
	presence PresenceTracker
}

// NewRoomService creates a new room service instance.
func NewRoomService(rooms *registry.Registry, presence PresenceTracker) RoomService {
	return &roomServiceImpl{
		rooms:    rooms,
		presence: presence,
	}
}

// CreateRoom allocates a new room. The caller joins it over the realtime
// transport afterwards; creation alone does not reserve a seat.
func (s *roomServiceImpl) CreateRoom(ctx context.Context) (*RoomInfo, error) {
	room, err := s.rooms.CreateRoom()
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return s.roomInfo(room), nil
}

// GetRoom resolves a live room by passcode. Unknown and expired passcodes
// are reported identically.
func (s *roomServiceImpl) GetRoom(ctx context.Context, passcode string) (*RoomInfo, error) {
	room, err := s.rooms.LookupByPasscode(passcode)
	if err != nil {
		return nil, err
	}
	return s.roomInfo(room), nil
}

// GetRoomByKey resolves a live room by its roomKey.
func (s *roomServiceImpl) GetRoomByKey(ctx context.Context, roomKey string) (*RoomInfo, error) {
	room, err := s.rooms.LookupByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}
	return s.roomInfo(room), nil
}

// ListRooms returns all live rooms with their current participant counts.
func (s *roomServiceImpl) ListRooms(ctx context.Context) ([]*RoomInfo, error) {
	rooms := s.rooms.List()
	result := make([]*RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, s.roomInfo(room))
	}
	return result, nil
}

// Stats returns an operational snapshot.
func (s *roomServiceImpl) Stats(ctx context.Context) (*ServerStats, error) {
	stats := &ServerStats{
		ActiveRooms: s.rooms.Count(),
	}
	if s.presence != nil {
		stats.Connections = s.presence.ConnectionCount()
	}
	return stats, nil
}

func (s *roomServiceImpl) roomInfo(room *registry.Room) *RoomInfo {
	info := &RoomInfo{
		Passcode:  room.Passcode,
		RoomKey:   room.RoomKey,
		CreatedAt: room.CreatedAt,
		ExpireAt:  room.ExpireAt.UnixMilli(),
	}
	if s.presence != nil {
		info.Participants = len(s.presence.MembersOf(room.RoomKey))
	}
	return info
}
