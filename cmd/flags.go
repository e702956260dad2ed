package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bnema/stk-connect/internal/domain"
	"github.com/spf13/cobra"
)

type sessionFlags struct {
	host           string
	port           int
	installDir     string
	configDir      string
	vendorID       string
	maxAttempts    int
	pollPeriod     time.Duration
	terminateGrace time.Duration
	stderrFile     string
}

func (f *sessionFlags) registerEndpoint(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.host, "host", domain.DefaultHost, "Host of the STK command socket")
	cmd.Flags().IntVar(&f.port, "port", domain.DefaultPort, "Port of the STK command socket")
}

func (f *sessionFlags) registerLaunch(cmd *cobra.Command) {
	defaults := domain.DefaultLaunchConfig()

	cmd.Flags().StringVar(&f.installDir, "install-dir", "", "STK install directory (default: $STK_INSTALL_DIR or the platform default)")
	cmd.Flags().StringVar(&f.configDir, "config-dir", "", "STK config directory (default: $STK_CONFIG_DIR or ~/STK)")
	cmd.Flags().StringVar(&f.vendorID, "vendor-id", "", "Vendor id passed to STK Engine")
	cmd.Flags().IntVar(&f.maxAttempts, "max-attempts", defaults.MaxAttempts, "Connect attempts before giving up")
	cmd.Flags().DurationVar(&f.pollPeriod, "poll-period", defaults.PollPeriod, "Wait between connect attempts")
	cmd.Flags().DurationVar(&f.terminateGrace, "terminate-grace", defaults.TerminateGrace, "Time STK gets to exit before it is killed")
	cmd.Flags().StringVar(&f.stderrFile, "stderr-file", "", "Append STK stderr to this file")
}

// apply copies the flags the user actually set onto profile.
func (f *sessionFlags) apply(cmd *cobra.Command, profile *domain.Profile) {
	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}

	if changed("host") {
		profile.Endpoint.Host = f.host
	}
	if changed("port") {
		profile.Endpoint.Port = f.port
	}
	if changed("install-dir") {
		profile.Launch.InstallDir = f.installDir
	}
	if changed("config-dir") {
		profile.Launch.ConfigDir = f.configDir
	}
	if changed("vendor-id") {
		profile.Launch.VendorID = f.vendorID
	}
	if changed("max-attempts") {
		profile.Launch.MaxAttempts = f.maxAttempts
	}
	if changed("poll-period") {
		profile.Launch.PollPeriod = f.pollPeriod
	}
	if changed("terminate-grace") {
		profile.Launch.TerminateGrace = f.terminateGrace
	}
	if changed("stderr-file") {
		profile.Launch.StderrPath = f.stderrFile
	}
}

var errNoCommands = errors.New("no commands to send")

// collectCommands returns the positional commands followed by those read from file,
// where "-" reads standard input.
func collectCommands(cmd *cobra.Command, args []string, file string) ([]string, error) {
	commands := append([]string(nil), args...)

	if file == "" {
		return commands, nil
	}

	var r io.Reader
	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		path, err := expandHome(file)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open command file: %w", err)
		}
		defer f.Close()
		r = f
	}

	fromFile, err := readCommands(r)
	if err != nil {
		return nil, err
	}

	return append(commands, fromFile...), nil
}

// readCommands reads one command per line, skipping blank lines and # comments.
func readCommands(r io.Reader) ([]string, error) {
	var commands []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		commands = append(commands, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}

	return commands, nil
}
