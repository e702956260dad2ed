package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Platform selects the executable layout and startup parameters of the application.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformUnix    Platform = "unix"
)

const (
	windowsExecutable = "AgUiApplication.exe"
	unixExecutable    = "connectconsole"

	EnvInstallDir    = "STK_INSTALL_DIR"
	EnvConfigDir     = "STK_CONFIG_DIR"
	envLibraryPath   = "LD_LIBRARY_PATH"
	defaultConfigDir = "STK"
)

var windowsReleases = []string{"STK 12", "STK 11", "STK 10"}

func PlatformFor(goos string) Platform {
	if goos == "windows" {
		return PlatformWindows
	}

	return PlatformUnix
}

// DefaultInstallDirs lists the conventional install locations, newest release first.
func DefaultInstallDirs(p Platform, home string, programFiles string) []string {
	if p == PlatformWindows {
		dirs := make([]string, 0, len(windowsReleases))
		for _, release := range windowsReleases {
			dirs = append(dirs, joinPath(p, programFiles, "AGI", release))
		}
		return dirs
	}

	return []string{joinPath(p, home, "stk")}
}

func DefaultInstallDir(p Platform, home string, programFiles string) string {
	return DefaultInstallDirs(p, home, programFiles)[0]
}

func DefaultConfigDir(p Platform, home string) string {
	return joinPath(p, home, defaultConfigDir)
}

func (p Platform) Executable(installDir string) string {
	if p == PlatformWindows {
		return joinPath(p, installDir, "bin", windowsExecutable)
	}

	return joinPath(p, installDir, "bin", unixExecutable)
}

// ValidatePort rejects ports the launched application cannot listen on. The
// Windows UI application always opens the default command port.
func (p Platform) ValidatePort(port int) error {
	if p == PlatformWindows && port != DefaultPort {
		return fmt.Errorf("%w: %s listens on %d, got %d", ErrFixedPort, windowsExecutable, DefaultPort, port)
	}

	return nil
}

// LaunchArgs returns the startup parameters. The vendor id only matters to the
// headless Unix console, which refuses to check out a license without it on some hosts.
func (p Platform) LaunchArgs(port int, vendorID string) []string {
	if p == PlatformWindows {
		return []string{"/pers", "STK"}
	}

	args := []string{"--port", strconv.Itoa(port), "--noGraphics"}
	if vendorID = strings.TrimSpace(vendorID); vendorID != "" {
		args = append(args, "--vendorid", vendorID)
	}

	return args
}

func (p Platform) LaunchEnv(base []string, installDir string, configDir string) []string {
	env := make([]string, 0, len(base)+3)
	libraryPath := ""
	for _, entry := range base {
		key, value, _ := strings.Cut(entry, "=")
		switch key {
		case EnvInstallDir, EnvConfigDir:
			continue
		case envLibraryPath:
			if p != PlatformWindows {
				libraryPath = value
				continue
			}
		}
		env = append(env, entry)
	}

	env = append(env, EnvInstallDir+"="+installDir)
	if configDir != "" {
		env = append(env, EnvConfigDir+"="+configDir)
	}

	if p != PlatformWindows {
		bin := joinPath(p, installDir, "bin")
		if libraryPath != "" {
			bin += ":" + libraryPath
		}
		env = append(env, envLibraryPath+"="+bin)
	}

	return env
}

func joinPath(p Platform, elem ...string) string {
	if p == PlatformWindows {
		return strings.Join(elem, `\`)
	}

	return filepath.ToSlash(filepath.Join(elem...))
}
