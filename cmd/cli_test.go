package cmd

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/bnema/stk-connect/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestSendWritesCommandsToListener(t *testing.T) {
	port, received := startCommandListener(t)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"send", "--host", "127.0.0.1", "--port", strconv.Itoa(port),
		"New / Scenario Demo", "Unload / *",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "sent 2 command(s) to 127.0.0.1:"+strconv.Itoa(port))
	assert.Equal(t, "New / Scenario Demo\nUnload / *\n", string(<-received))
}

func TestSendReadsCommandFile(t *testing.T) {
	port, received := startCommandListener(t)
	home := t.TempDir()

	script := filepath.Join(home, "setup.connect")
	require.NoError(t, os.WriteFile(script, []byte("# build the scenario\nNew / Scenario Demo\n\r\nSetUnits / km\r\n"), 0o600))

	_, _, err := executeCLI(t, home,
		"send", "--host", "127.0.0.1", "--port", strconv.Itoa(port),
		"--file", "~/setup.connect", "Unload / *",
	)
	require.NoError(t, err)
	assert.Equal(t, "Unload / *\nNew / Scenario Demo\nSetUnits / km\n", string(<-received))
}

func TestSendReadsCommandsFromStdin(t *testing.T) {
	port, received := startCommandListener(t)

	_, _, err := executeCLIWithInput(t, t.TempDir(), "Unload / *\n",
		"send", "--host", "127.0.0.1", "--port", strconv.Itoa(port), "-f", "-",
	)
	require.NoError(t, err)
	assert.Equal(t, "Unload / *\n", string(<-received))
}

func TestSendWithoutListenerReportsConnectionError(t *testing.T) {
	port := unusedPort(t)

	_, _, err := executeCLI(t, t.TempDir(), "send", "--host", "127.0.0.1", "--port", strconv.Itoa(port), "Unload / *")
	require.Error(t, err)

	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(port), connErr.Address)
}

func TestSendRequiresCommands(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "send")
	require.ErrorIs(t, err, errNoCommands)
}

func TestSendRejectsInvalidPort(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "send", "--port", "70000", "Unload / *")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestProfileLifecycle(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "profile", "set", "lab",
		"--host", "stk-lab", "--port", "6001", "--install-dir", "/opt/stk12", "--poll-period", "500ms")
	require.NoError(t, err)
	assert.Contains(t, stdout, "saved profile lab (stk-lab:6001)")
	assert.Contains(t, stdout, filepath.Join(home, ".stk", "profiles.toml"))

	_, _, err = executeCLI(t, home, "profile", "set", "lab", "--vendor-id", "ACME")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "profile", "show", "lab")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stk-lab:6001")
	assert.Contains(t, stdout, "/opt/stk12")
	assert.Contains(t, stdout, "15 x 500ms")
	assert.Contains(t, stdout, "ACME")

	stdout, _, err = executeCLI(t, home, "profile", "list", "--plain")
	require.NoError(t, err)
	assert.Equal(t, "lab\tstk-lab:6001\n", stdout)

	stdout, _, err = executeCLI(t, home, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "profiles: 1")

	stdout, _, err = executeCLI(t, home, "profile", "remove", "lab")
	require.NoError(t, err)
	assert.Equal(t, "removed profile lab\n", stdout)

	_, _, err = executeCLI(t, home, "profile", "show", "lab")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileSetRejectsInvalidSettings(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "profile", "set", "lab", "--max-attempts", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max attempts")
}

func TestSendUsesSelectedProfile(t *testing.T) {
	port, received := startCommandListener(t)
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "profile", "set", "local", "--host", "127.0.0.1", "--port", strconv.Itoa(port))
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "--profile", "local", "send", "Unload / *")
	require.NoError(t, err)
	assert.Equal(t, "Unload / *\n", string(<-received))
}

func TestProfileCanBeSelectedFromEnvironment(t *testing.T) {
	port, received := startCommandListener(t)
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "profile", "set", "local", "--host", "127.0.0.1", "--port", strconv.Itoa(port))
	require.NoError(t, err)

	t.Setenv("STKC_PROFILE", "local")
	_, _, err = runRoot("", "send", "Unload / *")
	require.NoError(t, err)
	assert.Equal(t, "Unload / *\n", string(<-received))
}

func TestUnknownProfileFails(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "--profile", "ghost", "send", "Unload / *")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestReportPrintsCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(),
		"report", "Facility/Site_A",
		"--style", "Access",
		"--access-object", "Satellite/Sat_1",
		"--file", "/tmp/access.txt",
		"--start", "1 Jul 2026 00:00:00.000",
		"--stop", "2026-07-02T00:00:00Z",
		"--print",
	)
	require.NoError(t, err)
	assert.Equal(t,
		`ReportCreate */Facility/Site_A Style "Access" Type Export File "/tmp/access.txt" AccessObject Satellite/Sat_1 TimePeriod "01 Jul 2026 00:00:00.000000" "02 Jul 2026 00:00:00.000000"`+"\n",
		stdout,
	)
}

func TestReportSendsCommand(t *testing.T) {
	port, received := startCommandListener(t)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"report", "Satellite/Sat_1", "--style", "LLA Position",
		"--host", "127.0.0.1", "--port", strconv.Itoa(port),
	)
	require.NoError(t, err)
	assert.Equal(t, "requested LLA Position report for Satellite/Sat_1\n", stdout)
	assert.Equal(t, "ReportCreate */Satellite/Sat_1 Style \"LLA Position\"\n", string(<-received))
}

func TestReportValidatesArguments(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "report", "Satellite/Sat_1", "--print")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"style\" not set")

	_, _, err = executeCLI(t, home, "report", "Satellite/Sat_1", "--style", "Access", "--start", "1 Jul 2026 00:00:00", "--print")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--start and --stop must be given together")

	_, _, err = executeCLI(t, home, "report", "Satellite/Sat_1", "--style", "Access", "--start", "tomorrow", "--stop", "later", "--print")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse --start")
}

func TestReadCommandsSkipsBlankAndCommentLines(t *testing.T) {
	commands, err := readCommands(bytes.NewBufferString("\n# comment\n  # indented comment\nNew / Scenario A\r\n  SetUnits / km\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"New / Scenario A", "  SetUnits / km"}, commands)
}

func TestLastLinesKeepsTail(t *testing.T) {
	assert.Equal(t, "c\nd", lastLines([]byte("a\nb\nc\nd\n"), 2))
	assert.Equal(t, "", lastLines(nil, 2))
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()

	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home string, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv(domain.EnvInstallDir, "")
	t.Setenv(domain.EnvConfigDir, "")
	t.Setenv("STKC_PROFILE", "")

	return runRoot(input, args...)
}

func runRoot(input string, args ...string) (string, string, error) {
	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(bytes.NewBufferString(input))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// startCommandListener accepts one connection and delivers everything read from it
// once the client closes.
func startCommandListener(t *testing.T) (int, <-chan []byte) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	received := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	return listener.Addr().(*net.TCPAddr).Port, received
}

func unusedPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	return port
}
