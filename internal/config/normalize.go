package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	if c.Persistence.LockBackoffMillis <= 0 {
		c.Persistence.LockBackoffMillis = defaultLockBackoffMillis
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("PROCTRACK_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = value
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	socket := strings.TrimSpace(c.Paths.SocketPath)
	if socket == "" {
		socket = defaultSocketPath(c.Paths.DataDir)
	}
	if c.Paths.SocketPath, err = expandPath(socket); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	return nil
}

func defaultSocketPath(dataDir string) string {
	if runtimeDir, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && strings.TrimSpace(runtimeDir) != "" {
		return filepath.Join(runtimeDir, defaultSocketName)
	}
	return filepath.Join(dataDir, defaultSocketName)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
