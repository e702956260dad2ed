package application

import "github.com/bnema/stk-connect/internal/domain"

// SessionSummary is a point-in-time view of a Launcher for display.
type SessionSummary struct {
	Profile      domain.ProfileName
	Endpoint     domain.Endpoint
	State        domain.LauncherState
	Attempts     int
	MaxAttempts  int
	Pid          int
	Executable   string
	CommandsSent int
	Detached     bool
}

func (l *Launcher) Summary(profile domain.ProfileName) SessionSummary {
	return SessionSummary{
		Profile:      profile,
		Endpoint:     l.Endpoint(),
		State:        l.state,
		Attempts:     l.attempts,
		MaxAttempts:  l.cfg.MaxAttempts,
		Pid:          l.Pid(),
		Executable:   l.spec.Path,
		CommandsSent: l.connector.Sent(),
		Detached:     l.detached,
	}
}
