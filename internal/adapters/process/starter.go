package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/bnema/stk-connect/internal/domain"
	"github.com/bnema/stk-connect/internal/logger"
	"github.com/bnema/stk-connect/internal/ports"
	"github.com/rs/zerolog"
)

const (
	stderrFileMode = 0o644
	waitDelay      = 2 * time.Second
)

// Starter runs the application detached from the caller's process group.
type Starter struct {
	tailSize int
	log      zerolog.Logger
}

var _ ports.ProcessStarter = (*Starter)(nil)

type Option func(*Starter)

func WithTailSize(size int) Option {
	return func(s *Starter) {
		s.tailSize = size
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Starter) {
		s.log = log
	}
}

func NewStarter(opts ...Option) *Starter {
	s := &Starter{tailSize: DefaultTailSize, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches spec. The context only guards the start itself; the process
// outlives it and is stopped through Terminate.
func (s *Starter) Start(ctx context.Context, spec domain.ProcessSpec) (ports.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Path == "" {
		return nil, errors.New("executable path is empty")
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Env = spec.Env
	cmd.Dir = spec.Dir
	cmd.SysProcAttr = detachedAttr()
	cmd.WaitDelay = waitDelay

	var (
		output     func() []byte
		stderrFile *os.File
	)
	if spec.StderrPath != "" {
		f, err := os.OpenFile(spec.StderrPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, stderrFileMode)
		if err != nil {
			return nil, fmt.Errorf("open stderr file: %w", err)
		}
		stderrFile = f
		cmd.Stderr = f
		output = func() []byte { return readFileTail(spec.StderrPath, s.tailSize) }
	} else {
		tail := newTailBuffer(s.tailSize)
		cmd.Stderr = tail
		output = tail.Contents
	}

	err := cmd.Start()
	if stderrFile != nil {
		_ = stderrFile.Close()
	}
	if err != nil {
		return nil, err
	}

	p := &Process{
		cmd:    cmd,
		output: output,
		done:   make(chan struct{}),
		log:    logger.WithComponent(s.log, "process").With().Int("pid", cmd.Process.Pid).Logger(),
	}
	go p.wait()

	p.log.Debug().Str("path", spec.Path).Msg("process started")

	return p, nil
}
