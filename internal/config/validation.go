package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate checks the configuration for logical consistency.
func (c *Config) Validate() error {
	if c.Input.Dir == "" {
		return errors.New("input dir is required")
	}
	if _, err := filepath.Match(c.Input.Pattern, ""); err != nil {
		return fmt.Errorf("invalid input pattern %q: %w", c.Input.Pattern, err)
	}

	if c.Chunk.MaxLines < 1 {
		return fmt.Errorf("chunk max_lines must be at least 1, got %d", c.Chunk.MaxLines)
	}

	if c.Records.OriginField == "" || c.Records.RouteField == "" {
		return errors.New("records origin_field and route_field are required")
	}
	if c.Records.PrefixLength < 1 {
		return fmt.Errorf("records prefix_length must be positive, got %d", c.Records.PrefixLength)
	}

	if c.Sessions.File == "" && len(c.Sessions.IDs) == 0 {
		return errors.New("sessions file or ids are required")
	}
	validStrategies := map[string]bool{
		StrategyZigzag:      true,
		StrategyLeastLoaded: true,
	}
	if !validStrategies[c.Sessions.Strategy] {
		return fmt.Errorf("invalid strategy: %s (must be one of: %s, %s)", c.Sessions.Strategy, StrategyZigzag, StrategyLeastLoaded)
	}

	if c.Output.Dir == "" && c.Output.NATS.URL == "" {
		return errors.New("output dir or nats url is required")
	}

	if c.Workers.Reformat < 1 || c.Workers.Parse < 1 {
		return errors.New("worker counts must be positive")
	}

	if len(c.Entities) == 0 {
		return errors.New("at least one entity is required")
	}
	for code := range c.Entities {
		if len(code) != c.Records.PrefixLength {
			return fmt.Errorf("entity code %q must be %d characters", code, c.Records.PrefixLength)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: text, json)", c.Log.Format)
	}

	return nil
}
