package store

// Config holds the table names used by the Store.
type Config struct {
	// ActiveTable holds live issue records.
	// Default: "issues"
	ActiveTable string

	// ArchiveTable holds soft-deleted issue records, restorable.
	// Default: "deleted_issues"
	ArchiveTable string

	// CounterTable holds one {name, current} record per sequence name.
	// Default: "issue_counters"
	CounterTable string
}

// DefaultConfig returns the standard table names.
func DefaultConfig() Config {
	return Config{
		ActiveTable:  "issues",
		ArchiveTable: "deleted_issues",
		CounterTable: "issue_counters",
	}
}

// validate applies defaults for any empty table name.
func (c *Config) validate() {
	if c.ActiveTable == "" {
		c.ActiveTable = "issues"
	}
	if c.ArchiveTable == "" {
		c.ArchiveTable = "deleted_issues"
	}
	if c.CounterTable == "" {
		c.CounterTable = "issue_counters"
	}
}
