// Package mcp provides the Model Context Protocol surface of the chat relay.
//
// The client here is a thin proxy: every tool call is translated into a REST
// API request, so the relay's behavior stays identical regardless of which
// transport a caller uses.
//
// MCP Tools:
//   - create_room: Create a new chat room and get its passcode
//   - room_info: Look up a live room by passcode
//   - list_rooms: List all live rooms with participant counts
//   - server_stats: Active room and connection counts
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: /mcp endpoint for remote MCP integration
//
// Chat itself (joining a room, messaging, typing indicators) happens over the
// WebSocket transport, not through MCP tools.
package mcp
