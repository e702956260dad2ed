package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Profiles []profileSchema `toml:"profiles"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported profiles schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type profileSchema struct {
	Name   string       `toml:"name"`
	Host   string       `toml:"host,omitempty"`
	Port   int          `toml:"port,omitempty"`
	Launch launchSchema `toml:"launch"`
}

// Durations are stored in time.ParseDuration form; empty means the default.
type launchSchema struct {
	InstallDir     string `toml:"install_dir,omitempty"`
	ConfigDir      string `toml:"config_dir,omitempty"`
	VendorID       string `toml:"vendor_id,omitempty"`
	MaxAttempts    int    `toml:"max_attempts,omitempty"`
	PollPeriod     string `toml:"poll_period,omitempty"`
	TerminateGrace string `toml:"terminate_grace,omitempty"`
	StderrPath     string `toml:"stderr_path,omitempty"`
}
