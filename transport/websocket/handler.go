package websocket

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/pairchat/chat/registry"
)

// handleEvent dispatches one inbound frame. Malformed frames and events from
// a session that already quit are ignored.
func (c *Client) handleEvent(raw []byte) {
	var ev ClientEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		logrus.WithError(err).WithField("connection", c.id).Debug("Ignoring malformed frame")
		return
	}
	if c.isLeft() {
		return
	}

	switch ev.Event {
	case EventCreateRoom:
		c.handleCreateRoom()
	case EventJoinRoom:
		c.handleJoinRoom(ev)
	case EventSendMessage:
		c.handleSendMessage(ev)
	case EventTyping:
		c.relayTyping(EventShowTyping)
	case EventStopTyping:
		c.relayTyping(EventHideTyping)
	case EventQuitRoom:
		c.handleQuitRoom()
	default:
		logrus.WithFields(logrus.Fields{
			"connection": c.id,
			"event":      ev.Event,
		}).Debug("Ignoring unknown event")
	}
}

// handleCreateRoom allocates a room and puts the creator in it. The creator
// joins without a display name.
func (c *Client) handleCreateRoom() {
	if roomKey, _, _ := c.session(); roomKey != "" {
		return
	}

	room, err := c.hub.registry.CreateRoom()
	if err != nil {
		logrus.WithError(err).WithField("connection", c.id).Error("Room creation failed")
		c.sendEvent(ServerEvent{Event: EventSystemMessage, Payload: msgCreateFailed})
		return
	}

	if err := c.hub.Join(room.RoomKey, c); err != nil {
		// A freshly created room cannot be full.
		logrus.WithError(err).WithField("room_key", room.RoomKey).Error("Creator could not join own room")
		return
	}
	c.setSession(room.RoomKey, "")

	c.sendEvent(ServerEvent{
		Event: EventRoomCreated,
		Payload: RoomCreatedPayload{
			Passcode: room.Passcode,
			RoomKey:  room.RoomKey,
			ExpireAt: room.ExpireAt.UnixMilli(),
		},
	})
}

// handleJoinRoom resolves a room by passcode (preferred) or roomKey, enforces
// capacity, and announces the new participant to the other side. Re-joining
// the room the client is already in just re-sends joinSuccess.
func (c *Client) handleJoinRoom(ev ClientEvent) {
	var (
		room *registry.Room
		err  error
	)
	switch {
	case strings.TrimSpace(ev.Passcode) != "":
		room, err = c.hub.registry.LookupByPasscode(ev.Passcode)
	case strings.TrimSpace(ev.RoomKey) != "":
		room, err = c.hub.registry.LookupByRoomKey(strings.TrimSpace(ev.RoomKey))
	default:
		err = registry.ErrRoomNotFound
	}
	if err != nil {
		c.sendEvent(ServerEvent{Event: EventSystemMessage, Payload: msgInvalidPasscode})
		return
	}

	current, _, _ := c.session()
	if current != "" && current != room.RoomKey {
		return
	}

	if err := c.hub.Join(room.RoomKey, c); err != nil {
		if errors.Is(err, ErrRoomFull) {
			c.sendEvent(ServerEvent{Event: EventSystemMessage, Payload: msgRoomFull})
		}
		return
	}

	rejoin := current == room.RoomKey
	if !rejoin {
		name := strings.TrimSpace(ev.Name)
		if name == "" {
			name = "Anonymous"
		}
		c.setSession(room.RoomKey, name)
	}

	c.sendEvent(ServerEvent{
		Event: EventJoinSuccess,
		Payload: JoinSuccessPayload{
			RoomKey:  room.RoomKey,
			Passcode: room.Passcode,
			ExpireAt: room.ExpireAt.UnixMilli(),
		},
	})

	if !rejoin {
		_, name, _ := c.session()
		c.hub.emitToRoom(room.RoomKey, ServerEvent{
			Event:   EventSystemMessage,
			Payload: name + " joined.",
		}, c)
	}
}

// handleSendMessage relays a chat message to the other participant. Unjoined
// senders and empty messages are ignored; message content is otherwise
// relayed as-is, whitespace included.
func (c *Client) handleSendMessage(ev ClientEvent) {
	roomKey, name, _ := c.session()
	if roomKey == "" || ev.Message == "" {
		return
	}

	c.hub.emitToRoom(roomKey, ServerEvent{
		Event: EventNewMessage,
		Payload: NewMessagePayload{
			Message: ev.Message,
			From:    name,
		},
	}, c)
}

// relayTyping forwards a typing indicator to the other participant.
func (c *Client) relayTyping(event string) {
	roomKey, _, _ := c.session()
	if roomKey == "" {
		return
	}
	c.hub.emitToRoom(roomKey, ServerEvent{Event: event}, c)
}

// handleQuitRoom announces the departure, removes the client from its room,
// and makes the session terminal. The connection stays open but every later
// event from it is ignored.
func (c *Client) handleQuitRoom() {
	roomKey, name, _ := c.session()
	if roomKey == "" {
		return
	}

	c.hub.emitToRoom(roomKey, ServerEvent{
		Event:   EventSystemMessage,
		Payload: name + " left.",
	}, c)
	c.hub.Leave(c)
	c.markLeft()
}
