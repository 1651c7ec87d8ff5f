// Package api provides the HTTP surface of the chat relay.
//
// Endpoints:
//
// Rooms (read/create only; joining and messaging happen over the WebSocket):
//   - POST /api/rooms - Create a new room
//   - GET /api/rooms - List live rooms
//   - GET /api/rooms/{passcode} - Get one room by passcode
//
// Operational:
//   - GET /api/stats - Active room and connection counts
//   - GET /healthz - Liveness check
//
// Realtime:
//   - GET /ws - WebSocket upgrade
//
// Everything else serves the static frontend from ./static/.
//
// All API endpoints return JSON. Errors are returned as JSON with appropriate
// HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
