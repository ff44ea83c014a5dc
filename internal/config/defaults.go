package config

// Default values for optional configuration fields.
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultShards     = 1
	DefaultBufferSize = 1024
)

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Stream.Shards == 0 {
		c.Stream.Shards = DefaultShards
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultBufferSize
	}
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}
