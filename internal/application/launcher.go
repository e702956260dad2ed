package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/bnema/stk-connect/internal/domain"
	"github.com/bnema/stk-connect/internal/logger"
	"github.com/bnema/stk-connect/internal/ports"
	"github.com/rs/zerolog"
)

// Launcher starts a local application instance, waits for its command port and
// then sends commands over it. Close tears down the connection first, the process last.
// It is not safe for concurrent use.
type Launcher struct {
	connector *Connector
	cfg       domain.LaunchConfig
	platform  domain.Platform
	spec      domain.ProcessSpec
	starter   ports.ProcessStarter
	clock     ports.Clock
	log       zerolog.Logger

	state        domain.LauncherState
	process      ports.Process
	attempts     int
	terminateErr error
	detached     bool
}

type launcherOptions struct {
	starter      ports.ProcessStarter
	dialer       ports.Dialer
	clock        ports.Clock
	log          zerolog.Logger
	platform     domain.Platform
	environ      []string
	homeDir      string
	programFiles string
	exists       func(path string) bool
	writeTimeout time.Duration
}

type LauncherOption func(*launcherOptions)

func WithProcessStarter(starter ports.ProcessStarter) LauncherOption {
	return func(o *launcherOptions) {
		o.starter = starter
	}
}

func WithLauncherDialer(dialer ports.Dialer) LauncherOption {
	return func(o *launcherOptions) {
		o.dialer = dialer
	}
}

func WithClock(clock ports.Clock) LauncherOption {
	return func(o *launcherOptions) {
		o.clock = clock
	}
}

func WithLauncherLogger(log zerolog.Logger) LauncherOption {
	return func(o *launcherOptions) {
		o.log = log
	}
}

func WithPlatform(platform domain.Platform) LauncherOption {
	return func(o *launcherOptions) {
		o.platform = platform
	}
}

// WithEnviron sets the base environment handed to the subprocess.
func WithEnviron(environ []string) LauncherOption {
	return func(o *launcherOptions) {
		o.environ = environ
	}
}

// WithHomeDir sets the directories default install and config paths are derived from.
func WithHomeDir(home string, programFiles string) LauncherOption {
	return func(o *launcherOptions) {
		o.homeDir = home
		o.programFiles = programFiles
	}
}

// WithLauncherWriteTimeout bounds each Send once connected.
func WithLauncherWriteTimeout(d time.Duration) LauncherOption {
	return func(o *launcherOptions) {
		o.writeTimeout = d
	}
}

// WithInstallProbe replaces the check used to pick among default install candidates.
func WithInstallProbe(exists func(path string) bool) LauncherOption {
	return func(o *launcherOptions) {
		o.exists = exists
	}
}

func NewLauncher(endpoint domain.Endpoint, cfg domain.LaunchConfig, opts ...LauncherOption) (*Launcher, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := launcherOptions{
		clock:        ports.SystemClock{},
		log:          zerolog.Nop(),
		platform:     domain.PlatformFor(runtime.GOOS),
		programFiles: os.Getenv("PROGRAMFILES"),
		exists:       fileExists,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.starter == nil {
		return nil, errors.New("process starter is nil")
	}
	if err := o.platform.ValidatePort(endpoint.Port); err != nil {
		return nil, err
	}
	if o.environ == nil {
		o.environ = os.Environ()
	}
	if o.homeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		o.homeDir = home
	}

	cfg.InstallDir = resolveInstallDir(cfg.InstallDir, o)
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = domain.DefaultConfigDir(o.platform, o.homeDir)
	}

	connectorOpts := []ConnectorOption{WithLogger(o.log), WithWriteTimeout(o.writeTimeout)}
	if o.dialer != nil {
		connectorOpts = append(connectorOpts, WithDialer(o.dialer))
	}

	return &Launcher{
		connector: NewConnector(endpoint, connectorOpts...),
		cfg:       cfg,
		platform:  o.platform,
		spec: domain.ProcessSpec{
			Path:       o.platform.Executable(cfg.InstallDir),
			Args:       o.platform.LaunchArgs(endpoint.Port, cfg.VendorID),
			Env:        o.platform.LaunchEnv(o.environ, cfg.InstallDir, cfg.ConfigDir),
			StderrPath: cfg.StderrPath,
		},
		starter: o.starter,
		clock:   o.clock,
		log:     logger.WithComponent(o.log, "launcher").With().Str("endpoint", endpoint.Address()).Logger(),
		state:   domain.LauncherNotLaunched,
	}, nil
}

// resolveInstallDir prefers the explicit directory, then the first default candidate
// that holds the executable, then the first default candidate.
func resolveInstallDir(explicit string, o launcherOptions) string {
	if explicit != "" {
		return explicit
	}

	candidates := domain.DefaultInstallDirs(o.platform, o.homeDir, o.programFiles)
	for _, dir := range candidates {
		if o.exists(o.platform.Executable(dir)) {
			return dir
		}
	}

	return candidates[0]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (l *Launcher) Endpoint() domain.Endpoint {
	return l.connector.Endpoint()
}

func (l *Launcher) Config() domain.LaunchConfig {
	return l.cfg
}

func (l *Launcher) ProcessSpec() domain.ProcessSpec {
	return l.spec
}

func (l *Launcher) State() domain.LauncherState {
	return l.state
}

// Attempts reports how many connects the last Launch made.
func (l *Launcher) Attempts() int {
	return l.attempts
}

func (l *Launcher) Pid() int {
	if l.process == nil {
		return 0
	}

	return l.process.Pid()
}

func (l *Launcher) StartupOutput() []byte {
	if l.process == nil {
		return nil
	}

	return l.process.Output()
}

// TerminateErr is the termination failure recorded by the last Close, if any.
func (l *Launcher) TerminateErr() error {
	return l.terminateErr
}

// Launch starts the application and polls its command port. The first connect is
// attempted immediately; later ones follow a PollPeriod sleep. On failure the
// subprocess is left running for the caller to Close.
func (l *Launcher) Launch(ctx context.Context) error {
	switch l.state {
	case domain.LauncherNotLaunched:
	case domain.LauncherClosed:
		return domain.ErrLauncherClosed
	default:
		return domain.ErrAlreadyLaunched
	}

	l.log.Debug().Str("path", l.spec.Path).Strs("args", l.spec.Args).Msg("starting application")
	process, err := l.starter.Start(ctx, l.spec)
	if err != nil {
		l.state = domain.LauncherFailed
		return &domain.SubprocessStartError{Path: l.spec.Path, Err: err}
	}

	l.process = process
	l.state = domain.LauncherLaunching
	l.log.Info().Int("pid", process.Pid()).Msg("application started")

	return l.poll(ctx)
}

func (l *Launcher) poll(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= l.cfg.MaxAttempts; attempt++ {
		l.attempts = attempt

		lastErr = l.connector.Connect(ctx)
		if lastErr == nil {
			l.state = domain.LauncherConnected
			l.log.Info().Int("attempt", attempt).Msg("command port ready")
			return nil
		}

		l.log.Debug().Err(lastErr).Int("attempt", attempt).Int("max_attempts", l.cfg.MaxAttempts).Msg("command port not ready")

		if err := domain.DiagnoseStartup(l.process.Output()); err != nil {
			l.state = domain.LauncherFailed
			return err
		}
		if l.process.Exited() {
			l.log.Debug().AnErr("exit", l.process.ExitErr()).Msg("application exited before opening its command port")
		}

		if attempt == l.cfg.MaxAttempts {
			break
		}

		if err := l.clock.Sleep(ctx, l.cfg.PollPeriod); err != nil {
			l.state = domain.LauncherFailed
			return fmt.Errorf("wait for command port: %w", err)
		}
	}

	l.state = domain.LauncherFailed
	return &domain.LaunchTimeoutError{
		Address:  l.connector.Endpoint().Address(),
		Attempts: l.attempts,
		Err:      lastErr,
	}
}

func (l *Launcher) Send(message string) error {
	if l.state != domain.LauncherConnected {
		return domain.ErrNotConnected
	}

	return l.connector.Send(message)
}

// Close closes the connection and then terminates the subprocess. A process that
// will not exit is recorded in TerminateErr and does not fail Close.
func (l *Launcher) Close() error {
	if l.state == domain.LauncherClosed {
		return nil
	}

	connErr := l.connector.Close()

	if l.process != nil {
		l.log.Debug().Int("pid", l.process.Pid()).Msg("terminating application")
		if err := l.process.Terminate(l.cfg.TerminateGrace); err != nil {
			l.terminateErr = fmt.Errorf("terminate pid %d: %w", l.process.Pid(), err)
			l.log.Warn().Err(l.terminateErr).Msg("application did not exit")
		}
		l.process = nil
	}

	l.state = domain.LauncherClosed

	return connErr
}

// Detach closes the connection and leaves the subprocess running.
func (l *Launcher) Detach() error {
	if l.state == domain.LauncherClosed {
		return nil
	}

	connErr := l.connector.Close()
	if l.process != nil {
		l.log.Info().Int("pid", l.process.Pid()).Msg("leaving application running")
		l.detached = true
	}
	l.state = domain.LauncherClosed

	return connErr
}
