package mysql

import "github.com/velmie/mutationq"

const (
	// DefaultEntryTable is the default table for queue entries.
	DefaultEntryTable = "mutationq_entries"
	// DefaultBlobTable is the default table for upload blobs.
	DefaultBlobTable = "mutationq_blobs"
)

// Config defines MySQL store behavior.
type Config struct {
	Table  string
	Logger mutationq.Logger
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = DefaultEntryTable
	}
	if c.Logger == nil {
		c.Logger = mutationq.NopLogger{}
	}

	return c
}

// Option configures the MySQL store.
type Option func(*Config)

// WithTable sets the table name. Use schema.table for a non-default schema.
func WithTable(name string) Option {
	return func(c *Config) {
		c.Table = name
	}
}

// WithLogger sets the logger used for lock release warnings.
func WithLogger(logger mutationq.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
