package config

import "fmt"

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}

	if c.Stream.Shards < 1 {
		return fmt.Errorf("stream.shards must be >= 1, got %d", c.Stream.Shards)
	}
	if c.Stream.BufferSize < 1 {
		return fmt.Errorf("stream.buffer_size must be >= 1, got %d", c.Stream.BufferSize)
	}

	return nil
}
