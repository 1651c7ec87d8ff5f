package websocket

// Client event names. These are the wire contract with the browser client and
// cannot change without a coordinated frontend release.
const (
	EventCreateRoom  = "createRoom"
	EventJoinRoom    = "joinRoom"
	EventSendMessage = "sendMessage"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
	EventQuitRoom    = "quitRoom"
)

// Server event names.
const (
	EventRoomCreated   = "roomCreated"
	EventJoinSuccess   = "joinSuccess"
	EventSystemMessage = "systemMessage"
	EventNewMessage    = "newMessage"
	EventShowTyping    = "showTyping"
	EventHideTyping    = "hideTyping"
)

// System message texts shown verbatim in the client transcript.
const (
	msgInvalidPasscode = "Invalid or expired passcode."
	msgRoomFull        = "Room is full."
	msgRoomExpired     = "⚠️ Room expired."
	msgCreateFailed    = "Could not create a room. Please try again."
)

// ClientEvent is the envelope for every inbound frame. Fields beyond Event
// are populated depending on the event type.
type ClientEvent struct {
	Event    string `json:"event"`
	Passcode string `json:"passcode,omitempty"`
	RoomKey  string `json:"roomKey,omitempty"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ServerEvent is the envelope for every outbound frame. For systemMessage the
// payload is the plain text; typing events carry no payload at all.
type ServerEvent struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// RoomCreatedPayload answers a createRoom. ExpireAt is epoch milliseconds.
type RoomCreatedPayload struct {
	Passcode string `json:"passcode"`
	RoomKey  string `json:"roomKey"`
	ExpireAt int64  `json:"expireAt"`
}

// JoinSuccessPayload answers a joinRoom. The passcode is included even when
// the client joined by roomKey, so it can display it for sharing.
type JoinSuccessPayload struct {
	RoomKey  string `json:"roomKey"`
	Passcode string `json:"passcode"`
	ExpireAt int64  `json:"expireAt"`
}

// NewMessagePayload relays a chat message to the other participant.
type NewMessagePayload struct {
	Message string `json:"message"`
	From    string `json:"from"`
}
