package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// demoConfig overrides some of the illustrative demo constants without
// touching code: tick_ms sets the simplex producer's tick, send_count the
// sink-disconnect producers' send count, and target_per_pid the fan-out
// per-consumer count and the program demo's tick target. The readme,
// source-disconnect and interactive demos use fixed constants. Wired so the CLI
// exercises gopkg.in/yaml.v3 the way the rest of the pack's CLIs load
// config files.
type demoConfig struct {
	TickMs       int `yaml:"tick_ms"`
	SendCount    int `yaml:"send_count"`
	TargetPerPID int `yaml:"target_per_pid"`
}

func loadConfig(path string) (demoConfig, error) {
	cfg := demoConfig{TickMs: 20, SendCount: 40, TargetPerPID: 10}
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
