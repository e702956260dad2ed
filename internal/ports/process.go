package ports

import (
	"context"
	"time"

	"github.com/bnema/stk-connect/internal/domain"
)

type ProcessStarter interface {
	Start(ctx context.Context, spec domain.ProcessSpec) (Process, error)
}

// Process is a running application instance owned by a Launcher.
type Process interface {
	Pid() int
	// Output returns the most recent stderr bytes, oldest first.
	Output() []byte
	Exited() bool
	// ExitErr is the wait result once Exited reports true.
	ExitErr() error
	// Terminate asks the process to exit and waits at most grace before killing it.
	Terminate(grace time.Duration) error
}
