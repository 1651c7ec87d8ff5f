// Command validate provides a small CLI that validates server settings JSON
// files in the ../configs directory. It checks:
//   - JSON structure and field types
//   - Room TTL and passcode generation limits
//   - Participant capacity (two-party rooms need at least 2)
//   - Message size and send queue bounds
//   - Origin allowlist entries (must be http(s) origins without a path)
package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Settings mirrors the JSON schema for the server settings file.
type Settings struct {
	RoomTTLMinutes      int      `json:"room_ttl_minutes"`
	MaxParticipants     int      `json:"max_participants"`
	PasscodeMaxAttempts int      `json:"passcode_max_attempts"`
	MaxMessageBytes     int64    `json:"max_message_bytes"`
	SendQueueSize       int      `json:"send_queue_size"`
	AllowedOrigins      []string `json:"allowed_origins"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateSettings loads and validates a single settings JSON file.
func validateSettings(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	// Zero means "use the default"; negative values are always wrong.
	if settings.RoomTTLMinutes < 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("room_ttl_minutes must not be negative, got %d", settings.RoomTTLMinutes))
	}

	if settings.MaxParticipants != 0 && settings.MaxParticipants < 2 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("max_participants must be at least 2, got %d", settings.MaxParticipants))
	}

	if settings.PasscodeMaxAttempts < 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("passcode_max_attempts must not be negative, got %d", settings.PasscodeMaxAttempts))
	}

	if settings.MaxMessageBytes < 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("max_message_bytes must not be negative, got %d", settings.MaxMessageBytes))
	}

	if settings.SendQueueSize < 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("send_queue_size must not be negative, got %d", settings.SendQueueSize))
	}

	for _, msg := range validateOrigins(settings.AllowedOrigins) {
		result.Valid = false
		result.Errors = append(result.Errors, msg)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Room TTL: %d minutes", settings.RoomTTLMinutes))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Capacity: %d participants", settings.MaxParticipants))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Passcode attempts: %d", settings.PasscodeMaxAttempts))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Max message: %d bytes", settings.MaxMessageBytes))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Send queue: %d frames", settings.SendQueueSize))
		if len(settings.AllowedOrigins) == 0 {
			result.Errors = append(result.Errors, "✓ Origins: any (allowlist empty)")
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Origins: %s", strings.Join(settings.AllowedOrigins, ", ")))
		}
	}

	return result
}

// validateOrigins returns an error message per malformed allowlist entry.
// Valid entries look like "https://chat.example.com" with no path or query.
func validateOrigins(origins []string) []string {
	var errs []string
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil {
			errs = append(errs, fmt.Sprintf("allowed_origins entry %q is not a URL: %v", origin, err))
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("allowed_origins entry %q must use http or https", origin))
			continue
		}
		if u.Host == "" {
			errs = append(errs, fmt.Sprintf("allowed_origins entry %q has no host", origin))
			continue
		}
		if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
			errs = append(errs, fmt.Sprintf("allowed_origins entry %q must be a bare origin without path or query", origin))
		}
	}
	return errs
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding settings files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateSettings(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All settings files are valid!")
	} else {
		fmt.Println("❌ Some settings files have errors")
		os.Exit(1)
	}
}
