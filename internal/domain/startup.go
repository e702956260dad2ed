package domain

import (
	"bufio"
	"bytes"
	"strings"
)

var startupFailures = []struct {
	marker string
	err    error
}{
	{marker: "STK Engine Runtime license not found", err: ErrLicenseNotFound},
	{marker: "STK/CON: Error binding to socket", err: ErrPortBind},
}

// DiagnoseStartup scans captured stderr for banners that mean the command port will never open.
func DiagnoseStartup(output []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		for _, failure := range startupFailures {
			if strings.Contains(line, failure.marker) {
				return &StartupError{Line: line, Err: failure.err}
			}
		}
	}

	return nil
}
