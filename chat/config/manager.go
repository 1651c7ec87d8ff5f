package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	ErrSettingsNotFound = errors.New("settings file not found")
	ErrInvalidSettings  = errors.New("invalid settings")
)

// SettingsFile is the file name looked up inside the config directory.
const SettingsFile = "server.json"

// Settings holds the tunable server parameters. Every field is optional in
// the JSON file; zero values fall back to defaults.
type Settings struct {
	RoomTTLMinutes      int      `json:"room_ttl_minutes"`
	MaxParticipants     int      `json:"max_participants"`
	PasscodeMaxAttempts int      `json:"passcode_max_attempts"`
	MaxMessageBytes     int64    `json:"max_message_bytes"`
	SendQueueSize       int      `json:"send_queue_size"`
	AllowedOrigins      []string `json:"allowed_origins"`
}

// RoomTTL returns the room lifetime as a duration.
func (s *Settings) RoomTTL() time.Duration {
	return time.Duration(s.RoomTTLMinutes) * time.Minute
}

// DefaultSettings returns the shipped defaults: 40-minute rooms capped at two
// participants, matching the relay's wire contract.
func DefaultSettings() *Settings {
	return &Settings{
		RoomTTLMinutes:      40,
		MaxParticipants:     2,
		PasscodeMaxAttempts: 1000,
		MaxMessageBytes:     4096,
		SendQueueSize:       64,
		AllowedOrigins:      []string{},
	}
}

// Manager loads and caches server settings from a config directory.
type Manager struct {
	configDir string
	settings  *Settings
	mu        sync.RWMutex
}

// NewManager creates a settings manager rooted at configDir. A missing
// settings file is not an error: the defaults are used. A present but broken
// file is an error, so a typo cannot silently fall back to defaults.
func NewManager(configDir string) (*Manager, error) {
	m := &Manager{configDir: configDir}

	settings, err := m.load()
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) {
			m.settings = DefaultSettings()
			return m, nil
		}
		return nil, err
	}

	m.settings = settings
	return m, nil
}

// Get returns the current settings.
func (m *Manager) Get() *Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Reload re-reads the settings file from disk. Settings already handed out
// keep their old values; only subsequent Get calls see the new ones.
func (m *Manager) Reload() error {
	settings, err := m.load()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()
	return nil
}

// Save validates and writes settings to the config directory, then makes
// them current.
func (m *Manager) Save(settings *Settings) error {
	applyDefaults(settings)
	if err := Validate(settings); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	path := filepath.Join(m.configDir, SettingsFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()
	return nil
}

func (m *Manager) load() (*Settings, error) {
	path := filepath.Join(m.configDir, SettingsFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	applyDefaults(&settings)
	if err := Validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks settings ranges. Capacity below 2 would make every room
// unjoinable for the second party, so it is rejected rather than clamped.
func Validate(s *Settings) error {
	if s.RoomTTLMinutes <= 0 {
		return fmt.Errorf("%w: room_ttl_minutes must be positive, got %d", ErrInvalidSettings, s.RoomTTLMinutes)
	}
	if s.MaxParticipants < 2 {
		return fmt.Errorf("%w: max_participants must be at least 2, got %d", ErrInvalidSettings, s.MaxParticipants)
	}
	if s.PasscodeMaxAttempts <= 0 {
		return fmt.Errorf("%w: passcode_max_attempts must be positive, got %d", ErrInvalidSettings, s.PasscodeMaxAttempts)
	}
	if s.MaxMessageBytes <= 0 {
		return fmt.Errorf("%w: max_message_bytes must be positive, got %d", ErrInvalidSettings, s.MaxMessageBytes)
	}
	if s.SendQueueSize <= 0 {
		return fmt.Errorf("%w: send_queue_size must be positive, got %d", ErrInvalidSettings, s.SendQueueSize)
	}
	return nil
}

func applyDefaults(s *Settings) {
	def := DefaultSettings()
	if s.RoomTTLMinutes == 0 {
		s.RoomTTLMinutes = def.RoomTTLMinutes
	}
	if s.MaxParticipants == 0 {
		s.MaxParticipants = def.MaxParticipants
	}
	if s.PasscodeMaxAttempts == 0 {
		s.PasscodeMaxAttempts = def.PasscodeMaxAttempts
	}
	if s.MaxMessageBytes == 0 {
		s.MaxMessageBytes = def.MaxMessageBytes
	}
	if s.SendQueueSize == 0 {
		s.SendQueueSize = def.SendQueueSize
	}
	if s.AllowedOrigins == nil {
		s.AllowedOrigins = []string{}
	}
}
