package domain

import (
	"errors"
	"time"
)

const (
	DefaultMaxAttempts    = 15
	DefaultPollPeriod     = 2 * time.Second
	DefaultTerminateGrace = 5 * time.Second
)

// LaunchConfig selects the executable to run and the budget for waiting on its command port.
type LaunchConfig struct {
	InstallDir     string
	ConfigDir      string
	VendorID       string
	MaxAttempts    int
	PollPeriod     time.Duration
	TerminateGrace time.Duration
	// StderrPath, when set, receives the subprocess stderr instead of an in-memory tail.
	StderrPath string
}

func DefaultLaunchConfig() LaunchConfig {
	return LaunchConfig{
		MaxAttempts:    DefaultMaxAttempts,
		PollPeriod:     DefaultPollPeriod,
		TerminateGrace: DefaultTerminateGrace,
	}
}

func (c LaunchConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("max attempts must be at least 1")
	}
	if c.PollPeriod < 0 {
		return errors.New("poll period must not be negative")
	}
	if c.TerminateGrace < 0 {
		return errors.New("terminate grace must not be negative")
	}

	return nil
}

// ProcessSpec is everything a starter needs to run the application.
type ProcessSpec struct {
	Path       string
	Args       []string
	Env        []string
	Dir        string
	StderrPath string
}
