package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected        = errors.New("not connected")
	ErrAlreadyConnected    = errors.New("already connected")
	ErrAlreadyLaunched     = errors.New("already launched")
	ErrLauncherClosed      = errors.New("launcher closed")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrLicenseNotFound     = errors.New("engine runtime license not found")
	ErrPortBind            = errors.New("application could not bind its command port")
	ErrProcessStillRunning = errors.New("process still running after kill")
	ErrFixedPort           = errors.New("platform does not accept a command port")
)

// ConnectionError reports a failed TCP connect to the command port.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// LaunchTimeoutError reports that the command port never accepted a connection
// within the attempt budget. Err holds the last connect failure.
type LaunchTimeoutError struct {
	Address  string
	Attempts int
	Err      error
}

func (e *LaunchTimeoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("command port %s not reachable after %d attempts", e.Address, e.Attempts)
	}

	return fmt.Sprintf("command port %s not reachable after %d attempts: %v", e.Address, e.Attempts, e.Err)
}

func (e *LaunchTimeoutError) Unwrap() error {
	return e.Err
}

// SubprocessStartError reports that the executable could not be started.
type SubprocessStartError struct {
	Path string
	Err  error
}

func (e *SubprocessStartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Path, e.Err)
}

func (e *SubprocessStartError) Unwrap() error {
	return e.Err
}

// StartupError reports a fatal banner the application printed while starting.
type StartupError struct {
	Line string
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Line)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}
