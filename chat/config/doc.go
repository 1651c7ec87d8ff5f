// Package config loads server settings for the pairchat relay.
//
// Settings live in a single JSON file (server.json) inside a config
// directory. A missing file means defaults; a malformed or out-of-range file
// is an error so misconfiguration never degrades silently.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	settings := manager.Get()
package config
