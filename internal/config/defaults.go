package config

const (
	defaultConfigPath        = "~/.config/proctrack/proctrack.toml"
	defaultDataDir           = "~/.config/proctrack"
	defaultSocketName        = "proctrack.sock"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLockBackoffMillis = 1000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Persistence: Persistence{
			LockBackoffMillis: defaultLockBackoffMillis,
		},
	}
}
