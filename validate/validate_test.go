package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}
	return path
}

func TestValidateSettings_Valid(t *testing.T) {
	path := writeSettings(t, `{
		"room_ttl_minutes": 40,
		"max_participants": 2,
		"passcode_max_attempts": 1000,
		"max_message_bytes": 4096,
		"send_queue_size": 64,
		"allowed_origins": ["https://chat.example.com"]
	}`)

	result := validateSettings(path)
	if !result.Valid {
		t.Errorf("Expected valid settings, but got errors: %v", result.Errors)
	}

	foundTTL := false
	for _, info := range result.Errors {
		if strings.Contains(info, "Room TTL: 40") {
			foundTTL = true
		}
	}
	if !foundTTL {
		t.Errorf("Expected TTL info line, got: %v", result.Errors)
	}
}

func TestValidateSettings_EmptyFileUsesDefaults(t *testing.T) {
	// All fields omitted means the server falls back to defaults.
	path := writeSettings(t, `{}`)

	result := validateSettings(path)
	if !result.Valid {
		t.Errorf("Expected empty settings to validate, got errors: %v", result.Errors)
	}
}

func TestValidateSettings_InvalidJSON(t *testing.T) {
	path := writeSettings(t, `{not json`)

	result := validateSettings(path)
	if result.Valid {
		t.Error("Expected invalid result for malformed JSON")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Invalid JSON") {
		t.Errorf("Expected JSON error, got: %v", result.Errors)
	}
}

func TestValidateSettings_MissingFile(t *testing.T) {
	result := validateSettings(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
}

func TestValidateSettings_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "negative ttl",
			content: `{"room_ttl_minutes": -5}`,
			wantErr: "room_ttl_minutes",
		},
		{
			name:    "capacity one",
			content: `{"max_participants": 1}`,
			wantErr: "max_participants",
		},
		{
			name:    "negative attempts",
			content: `{"passcode_max_attempts": -1}`,
			wantErr: "passcode_max_attempts",
		},
		{
			name:    "negative message size",
			content: `{"max_message_bytes": -1}`,
			wantErr: "max_message_bytes",
		},
		{
			name:    "negative queue size",
			content: `{"send_queue_size": -1}`,
			wantErr: "send_queue_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSettings(t, tt.content)
			result := validateSettings(path)
			if result.Valid {
				t.Fatal("Expected invalid result")
			}
			found := false
			for _, e := range result.Errors {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error mentioning %q, got: %v", tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidateOrigins(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		wantErr bool
	}{
		{"empty list", nil, false},
		{"https origin", []string{"https://chat.example.com"}, false},
		{"http origin with port", []string{"http://localhost:8080"}, false},
		{"missing scheme", []string{"chat.example.com"}, true},
		{"non-http scheme", []string{"ftp://chat.example.com"}, true},
		{"origin with path", []string{"https://chat.example.com/app"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateOrigins(tt.origins)
			if tt.wantErr && len(errs) == 0 {
				t.Error("Expected validation errors")
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("Unexpected validation errors: %v", errs)
			}
		})
	}
}
