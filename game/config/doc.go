// Package config provides configuration management for Tank Tactics games.
//
// The config package handles:
//   - Loading game configurations from JSON or YAML files
//   - Validation through engine.ValidateGameConfig
//   - Picking the default board
//   - Listing the boards on disk
//
// Configuration Format:
//
// Game configurations live in the configs directory as .json, .yaml or .yml
// files. Each configuration defines the rule set (border, collision and fall
// damage, daily gifts, drone range), the starting tank stat line, the opening
// walls and gifts, and optionally the initial roster of tanks.
//
// Usage:
//
//	manager, err := config.NewManager("configs", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("skirmish")
//
//	// Get default configuration (classic, else the first on disk)
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// Parsed configurations are cached and parsed again when the file's
// modification time changes. Names containing path separators are rejected.
package config
