package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:              "~/.config/issuefilter",
			SQLiteFile:        "issuefilter.db",
			SQLiteJournalMode: "wal",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			NoColor: false,
		},
		Facets: FacetsConfig{
			Locale: "en",
		},
	}
}
