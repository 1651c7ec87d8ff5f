package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wricardo/pairchat/chat/config"
	"github.com/wricardo/pairchat/chat/registry"
	"github.com/wricardo/pairchat/chat/service"
	"github.com/wricardo/pairchat/transport/websocket"
)

// MockRoomService implements service.RoomService for testing
type MockRoomService struct {
	CreateRoomFunc   func(ctx context.Context) (*service.RoomInfo, error)
	GetRoomFunc      func(ctx context.Context, passcode string) (*service.RoomInfo, error)
	GetRoomByKeyFunc func(ctx context.Context, roomKey string) (*service.RoomInfo, error)
	ListRoomsFunc    func(ctx context.Context) ([]*service.RoomInfo, error)
	StatsFunc        func(ctx context.Context) (*service.ServerStats, error)
}

func (m *MockRoomService) CreateRoom(ctx context.Context) (*service.RoomInfo, error) {
	if m.CreateRoomFunc != nil {
		return m.CreateRoomFunc(ctx)
	}
	return &service.RoomInfo{
		Passcode:  "123456",
		RoomKey:   "aaaabbbbccccddddeeeeffff00001111",
		CreatedAt: time.Now(),
		ExpireAt:  time.Now().Add(40 * time.Minute).UnixMilli(),
	}, nil
}

func (m *MockRoomService) GetRoom(ctx context.Context, passcode string) (*service.RoomInfo, error) {
	if m.GetRoomFunc != nil {
		return m.GetRoomFunc(ctx, passcode)
	}
	return &service.RoomInfo{Passcode: passcode}, nil
}

func (m *MockRoomService) GetRoomByKey(ctx context.Context, roomKey string) (*service.RoomInfo, error) {
	if m.GetRoomByKeyFunc != nil {
		return m.GetRoomByKeyFunc(ctx, roomKey)
	}
	return &service.RoomInfo{RoomKey: roomKey}, nil
}

func (m *MockRoomService) ListRooms(ctx context.Context) ([]*service.RoomInfo, error) {
	if m.ListRoomsFunc != nil {
		return m.ListRoomsFunc(ctx)
	}
	return []*service.RoomInfo{}, nil
}

func (m *MockRoomService) Stats(ctx context.Context) (*service.ServerStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &service.ServerStats{}, nil
}

// Test helpers
func setupTestServer(mockService *MockRoomService) *Server {
	hub := websocket.NewHub(registry.New(registry.Options{}), config.DefaultSettings())
	go hub.Run()
	return NewServer(mockService, hub)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestCreateRoom(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockRoomService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "Create room",
			setupMock: func(m *MockRoomService) {
				m.CreateRoomFunc = func(ctx context.Context) (*service.RoomInfo, error) {
					return &service.RoomInfo{
						Passcode: "654321",
						RoomKey:  "00112233445566778899aabbccddeeff",
						ExpireAt: time.Now().Add(40 * time.Minute).UnixMilli(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.RoomInfo
				parseResponse(t, w, &resp)
				if resp.Passcode != "654321" {
					t.Errorf("Expected passcode 654321, got %s", resp.Passcode)
				}
				if resp.RoomKey != "00112233445566778899aabbccddeeff" {
					t.Errorf("Unexpected room key %s", resp.RoomKey)
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockRoomService) {
				m.CreateRoomFunc = func(ctx context.Context) (*service.RoomInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRoomService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/rooms", nil)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListRooms(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockRoomService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List multiple rooms",
			setupMock: func(m *MockRoomService) {
				m.ListRoomsFunc = func(ctx context.Context) ([]*service.RoomInfo, error) {
					return []*service.RoomInfo{
						{Passcode: "111111", Participants: 2},
						{Passcode: "222222", Participants: 1},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 2 {
					t.Errorf("Expected count 2, got %v", resp["count"])
				}
				rooms := resp["rooms"].([]interface{})
				if len(rooms) != 2 {
					t.Errorf("Expected 2 rooms, got %d", len(rooms))
				}
			},
		},
		{
			name: "Handle empty room list",
			setupMock: func(m *MockRoomService) {
				m.ListRoomsFunc = func(ctx context.Context) ([]*service.RoomInfo, error) {
					return []*service.RoomInfo{}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 0 {
					t.Errorf("Expected count 0, got %v", resp["count"])
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockRoomService) {
				m.ListRoomsFunc = func(ctx context.Context) ([]*service.RoomInfo, error) {
					return nil, fmt.Errorf("listing error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRoomService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/rooms", nil)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetRoom(t *testing.T) {
	tests := []struct {
		name           string
		passcode       string
		setupMock      func(*MockRoomService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:     "Get existing room",
			passcode: "123456",
			setupMock: func(m *MockRoomService) {
				m.GetRoomFunc = func(ctx context.Context, passcode string) (*service.RoomInfo, error) {
					if passcode != "123456" {
						return nil, registry.ErrRoomNotFound
					}
					return &service.RoomInfo{
						Passcode:     passcode,
						RoomKey:      "aaaabbbbccccddddeeeeffff00001111",
						Participants: 1,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.RoomInfo
				parseResponse(t, w, &resp)
				if resp.Passcode != "123456" {
					t.Errorf("Expected passcode 123456, got %s", resp.Passcode)
				}
			},
		},
		{
			name:     "Room not found",
			passcode: "000000",
			setupMock: func(m *MockRoomService) {
				m.GetRoomFunc = func(ctx context.Context, passcode string) (*service.RoomInfo, error) {
					return nil, registry.ErrRoomNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "room not found" {
					t.Errorf("Expected error 'room not found', got %s", resp["error"])
				}
			},
		},
		{
			name:     "Unexpected service error",
			passcode: "123456",
			setupMock: func(m *MockRoomService) {
				m.GetRoomFunc = func(ctx context.Context, passcode string) (*service.RoomInfo, error) {
					return nil, fmt.Errorf("lookup failed")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRoomService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/rooms/"+tt.passcode, nil)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestStats(t *testing.T) {
	mockService := &MockRoomService{
		StatsFunc: func(ctx context.Context) (*service.ServerStats, error) {
			return &service.ServerStats{ActiveRooms: 3, Connections: 5}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/stats", nil)

	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp service.ServerStats
	parseResponse(t, w, &resp)
	if resp.ActiveRooms != 3 || resp.Connections != 5 {
		t.Errorf("Expected 3 rooms and 5 connections, got %d and %d", resp.ActiveRooms, resp.Connections)
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockRoomService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)

	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", resp["status"])
	}
}

func TestSecurityHeaders(t *testing.T) {
	server := setupTestServer(&MockRoomService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)

	server.ServeHTTP(w, req)

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	}
	for name, want := range headers {
		if got := w.Header().Get(name); got != want {
			t.Errorf("Expected %s header %q, got %q", name, want, got)
		}
	}
}
