package domain

// LauncherState is the lifecycle position of a Launcher.
type LauncherState int

const (
	LauncherNotLaunched LauncherState = iota
	LauncherLaunching
	LauncherConnected
	LauncherClosed
	LauncherFailed
)

func (s LauncherState) String() string {
	switch s {
	case LauncherNotLaunched:
		return "NotLaunched"
	case LauncherLaunching:
		return "Launching"
	case LauncherConnected:
		return "Connected"
	case LauncherClosed:
		return "Closed"
	case LauncherFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
