package process

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/bnema/stk-connect/internal/domain"
	"github.com/bnema/stk-connect/internal/ports"
	"github.com/rs/zerolog"
)

const killWait = 2 * time.Second

type Process struct {
	cmd     *exec.Cmd
	output  func() []byte
	done    chan struct{}
	waitErr error
	log     zerolog.Logger
}

var _ ports.Process = (*Process)(nil)

func (p *Process) wait() {
	p.waitErr = p.cmd.Wait()
	close(p.done)
	p.log.Debug().AnErr("wait", p.waitErr).Msg("process exited")
}

func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

func (p *Process) Output() []byte {
	return p.output()
}

func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitErr is the result of waiting on the process, nil while it runs.
func (p *Process) ExitErr() error {
	if !p.Exited() {
		return nil
	}

	return p.waitErr
}

// Terminate signals the process group, waits up to grace, then kills it. It never
// waits longer than grace plus a short bound after the kill.
func (p *Process) Terminate(grace time.Duration) error {
	if p.Exited() {
		return nil
	}

	if err := interrupt(p.cmd.Process); err != nil && !isGone(err) {
		p.log.Debug().Err(err).Msg("terminate signal failed")
	}
	if p.waitFor(grace) {
		return nil
	}

	p.log.Debug().Dur("grace", grace).Msg("process ignored terminate, killing")
	if err := kill(p.cmd.Process); err != nil && !isGone(err) {
		return fmt.Errorf("kill process: %w", err)
	}
	if p.waitFor(killWait) {
		return nil
	}

	return domain.ErrProcessStillRunning
}

func (p *Process) waitFor(d time.Duration) bool {
	if d <= 0 {
		return p.Exited()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	}
}
