package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type TimePeriod struct {
	Start time.Time
	Stop  time.Time
}

// ReportCreate describes a ReportCreate command that writes a report to a file on
// the application side. The reply is not read.
type ReportCreate struct {
	ObjectPath       string
	Style            string
	FilePath         string
	AccessObjectPath string
	TimePeriod       *TimePeriod
	TimeStep         string
	AdditionalData   string
	Summary          string
	AllLines         string
}

func (r ReportCreate) Command() (string, error) {
	objectPath := strings.TrimPrefix(strings.TrimSpace(r.ObjectPath), "*/")
	if objectPath == "" {
		return "", errors.New("report object path is empty")
	}
	if strings.TrimSpace(r.Style) == "" {
		return "", errors.New("report style is empty")
	}

	if err := r.validateFields(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ReportCreate */%s Style \"%s\"", objectPath, r.Style)
	if r.FilePath != "" {
		fmt.Fprintf(&b, " Type Export File \"%s\"", r.FilePath)
	}
	if r.AccessObjectPath != "" {
		fmt.Fprintf(&b, " AccessObject %s", r.AccessObjectPath)
	}
	if r.TimePeriod != nil {
		if r.TimePeriod.Stop.Before(r.TimePeriod.Start) {
			return "", errors.New("report time period stops before it starts")
		}
		fmt.Fprintf(&b, " TimePeriod \"%s\" \"%s\"", FormatSTKTime(r.TimePeriod.Start), FormatSTKTime(r.TimePeriod.Stop))
	}
	if r.TimeStep != "" {
		fmt.Fprintf(&b, " TimeStep %s", r.TimeStep)
	}
	if r.AdditionalData != "" {
		fmt.Fprintf(&b, " AdditionalData \"%s\"", r.AdditionalData)
	}
	if r.Summary != "" {
		fmt.Fprintf(&b, " Summary %s", r.Summary)
	}
	if r.AllLines != "" {
		fmt.Fprintf(&b, " AllLines %s", r.AllLines)
	}

	return b.String(), nil
}

// validateFields keeps the command on one line and its quoted values closed.
func (r ReportCreate) validateFields() error {
	quoted := []struct{ name, value string }{
		{"style", r.Style},
		{"file", r.FilePath},
		{"additional data", r.AdditionalData},
	}
	for _, field := range quoted {
		if strings.Contains(field.value, `"`) {
			return fmt.Errorf("report %s must not contain a double quote", field.name)
		}
	}

	fields := append(quoted, []struct{ name, value string }{
		{"object path", r.ObjectPath},
		{"access object", r.AccessObjectPath},
		{"time step", r.TimeStep},
		{"summary", r.Summary},
		{"all lines", r.AllLines},
	}...)
	for _, field := range fields {
		if strings.ContainsAny(field.value, "\r\n") {
			return fmt.Errorf("report %s must not contain a line break", field.name)
		}
	}

	return nil
}
