package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/pairchat/chat/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Pairchat Relay",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Pairchat - ephemeral two-party chat relay

This is a thin client that proxies all requests to the REST API server.

Rooms hold at most two participants, are identified by a 6-digit passcode,
and disappear 40 minutes after creation. Messages are relayed live over
WebSocket and never stored.

AVAILABLE TOOLS:
- create_room: Create a new chat room, returns its passcode
- room_info: Look up a live room by passcode
- list_rooms: List all live rooms
- server_stats: Active room and connection counts

Joining a room and exchanging messages happens over the WebSocket endpoint
(/ws), not through these tools.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a new two-party chat room. Returns the passcode to share with the other participant.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleCreateRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_info",
		Description: "Look up a live room by its 6-digit passcode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"passcode": map[string]interface{}{
					"type":        "string",
					"description": "6-digit room passcode",
				},
			},
			Required: []string{"passcode"},
		},
	}, c.handleRoomInfo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all live rooms with their participant counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get active room and open connection counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var room service.RoomInfo
	err := c.apiCall("POST", "/api/rooms", nil, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created room\nPasscode: %s\nExpires: %s\n",
		room.Passcode, formatExpiry(room.ExpireAt))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRoomInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	passcode, _ := args["passcode"].(string)

	var room service.RoomInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", passcode), nil, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatRoomInfo(&room)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                `json:"count"`
		Rooms []service.RoomInfo `json:"rooms"`
	}

	err := c.apiCall("GET", "/api/rooms", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Live Rooms (%d):\n\n", response.Count))
	for _, room := range response.Rooms {
		b.WriteString(fmt.Sprintf("- %s (%d participants, expires %s)\n",
			room.Passcode, room.Participants, formatExpiry(room.ExpireAt)))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats service.ServerStats
	err := c.apiCall("GET", "/api/stats", nil, &stats)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active rooms: %d\nOpen connections: %d\n",
		stats.ActiveRooms, stats.Connections)
	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func formatRoomInfo(room *service.RoomInfo) string {
	return fmt.Sprintf("Room %s\nParticipants: %d\nCreated: %s\nExpires: %s\n",
		room.Passcode, room.Participants,
		room.CreatedAt.Format("2006-01-02 15:04:05"),
		formatExpiry(room.ExpireAt))
}

func formatExpiry(epochMillis int64) string {
	return time.UnixMilli(epochMillis).Format("15:04:05")
}
