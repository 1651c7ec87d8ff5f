// Package websocket is the realtime transport for the chat relay.
//
// Hub owns connection and room membership state; Client owns one connection
// and its read/write pumps. Inbound events (createRoom, joinRoom, sendMessage,
// typing, stopTyping, quitRoom) drive a small per-connection session: a
// connection starts unjoined, joins at most one room, and after quitRoom it
// ignores everything until the socket closes.
//
// Message Protocol:
//
// Frames are JSON envelopes in both directions:
//   - Incoming: {"event": "joinRoom", "passcode": "123456", "name": "Bob"}
//   - Outgoing: {"event": "newMessage", "payload": {"message": "hi", "from": "Bob"}}
//
// Room existence and expiry belong to the registry; the hub only reacts to
// them. When the registry expires a room, ExpireRoom tells the participants
// once and detaches them so they can start over on the same connection.
//
// Usage:
//
//	hub := websocket.NewHub(reg, settings)
//	go hub.Run()
//	http.HandleFunc("/ws", hub.ServeWS)
package websocket
