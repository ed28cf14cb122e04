package sqlite

const (
	// DefaultEntryTable is the default table for queue entries.
	DefaultEntryTable = "mutationq_entries"
	// DefaultBlobTable is the default table for upload blobs.
	DefaultBlobTable = "mutationq_blobs"
)

// Config defines SQLite store behavior.
type Config struct {
	Table        string
	CreateSchema bool
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = DefaultEntryTable
	}

	return c
}

// Option configures the SQLite store.
type Option func(*Config)

// WithTable sets the table name.
func WithTable(name string) Option {
	return func(c *Config) {
		c.Table = name
	}
}

// WithCreateSchema creates the table on construction when it does not exist.
func WithCreateSchema(enabled bool) Option {
	return func(c *Config) {
		c.CreateSchema = enabled
	}
}
