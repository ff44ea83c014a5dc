package config

// Config is the root configuration for a bookkeeper run. Every field has a
// usable default; a config file only overrides.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Accounts AccountsConfig `yaml:"accounts"`
	Stream   StreamConfig   `yaml:"stream"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// AccountsConfig holds account policy knobs.
type AccountsConfig struct {
	// CreateOnAnyKind lets any transaction kind create an unknown client's
	// account. Default is deposit-only creation: anything else against an
	// unknown client is rejected.
	CreateOnAnyKind bool `yaml:"create_on_any_kind"`

	// AllowWithdrawalReplay disables withdrawal tx id deduplication.
	AllowWithdrawalReplay bool `yaml:"allow_withdrawal_replay"`
}

// StreamConfig holds pipeline settings.
type StreamConfig struct {
	// Shards is the number of independent workers, keyed by client id.
	Shards int `yaml:"shards"`

	// BufferSize is the initial per-shard queue capacity.
	BufferSize int `yaml:"buffer_size"`
}
