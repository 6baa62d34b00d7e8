package main

import (
	"strings"

	"proctrack/internal/config"
)

// configEnv names the variable that points proctrackd at a settings file.
const configEnv = "PROCTRACK_CONFIG"

func loadConfig(path string) (*config.Config, error) {
	cfg, _, _, err := config.Load(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
