package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:       "~/.config/webtime",
			SQLiteFile: "webtime.db",
			StoreName:  "data",
		},
		Daemon: DaemonConfig{
			Host:                    "127.0.0.1",
			Port:                    7791,
			AutosaveIntervalMinutes: 5,
		},
		Report: ReportConfig{
			TopCount: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Ignore: IgnoreConfig{
			Domains: DefaultIgnoredDomains(),
		},
	}
}
