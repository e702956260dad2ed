package status

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bnema/stk-connect/internal/application"
	"github.com/bnema/stk-connect/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const attemptBarWidth = 20

func renderSessionView(summary application.SessionSummary, s styles) string {
	title := "STK session"
	if summary.Profile != "" {
		title = fmt.Sprintf("STK session (%s)", summary.Profile)
	}

	lines := []string{
		s.title.Render(title),
		field("endpoint", s.detail.Render(summary.Endpoint.Address()), s),
		field("state", stateLabel(summary, s), s),
	}

	if summary.MaxAttempts > 0 {
		lines = append(lines, field("attempts", attemptLine(summary.Attempts, summary.MaxAttempts, s), s))
	}
	if summary.Executable != "" {
		lines = append(lines, field("executable", s.detail.Render(summary.Executable), s))
	}
	if summary.Pid > 0 {
		lines = append(lines, field("pid", s.detail.Render(strconv.Itoa(summary.Pid)), s))
	}
	lines = append(lines, field("commands", s.detail.Render(strconv.Itoa(summary.CommandsSent)), s))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func stateLabel(summary application.SessionSummary, s styles) string {
	switch {
	case summary.Detached:
		return s.ok.Render("running (detached)")
	case summary.State == domain.LauncherFailed:
		return s.warning.Render(summary.State.String())
	case summary.State == domain.LauncherConnected:
		return s.ok.Render(summary.State.String())
	default:
		return s.detail.Render(summary.State.String())
	}
}

func renderProfilesView(profiles []domain.Profile, s styles) string {
	lines := []string{
		s.title.Render("STK profiles"),
		s.header.Render(fmt.Sprintf("profiles: %d", len(profiles))),
	}

	if len(profiles) == 0 {
		lines = append(lines, s.empty.Render("No profiles saved."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, profile := range profiles {
		lines = append(lines, s.section.Render(renderProfile(profile, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProfile(profile domain.Profile, s styles) string {
	launch := profile.Launch
	parts := []string{
		s.profile.Render(string(profile.Name)),
		field("endpoint", s.detail.Render(profile.Endpoint.Address()), s),
		field("install", s.detail.Render(orDefault(launch.InstallDir)), s),
		field("config", s.detail.Render(orDefault(launch.ConfigDir)), s),
		field("polling", s.detail.Render(fmt.Sprintf("%d x %s", launch.MaxAttempts, launch.PollPeriod)), s),
		field("grace", s.detail.Render(launch.TerminateGrace.String()), s),
	}

	if launch.VendorID != "" {
		parts = append(parts, field("vendor id", s.detail.Render(launch.VendorID), s))
	}
	if launch.StderrPath != "" {
		parts = append(parts, field("stderr", s.detail.Render(launch.StderrPath), s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func field(name string, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(name+":"), value)
}

func orDefault(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(default)"
	}

	return value
}

func attemptLine(attempts int, maxAttempts int, s styles) string {
	bar := renderProgressBar(attempts, maxAttempts, attemptBarWidth, s)
	count := lipgloss.NewStyle().
		Foreground(interpolateColor(float64(attempts), 0, float64(maxAttempts))).
		Render(fmt.Sprintf("%d/%d", attempts, maxAttempts))

	return lipgloss.JoinHorizontal(lipgloss.Top, bar, " ", count)
}

func renderProgressBar(used int, total int, width int, s styles) string {
	if width <= 0 || total <= 0 {
		return ""
	}

	fraction := float64(used) / float64(total)
	filled := int(math.Round(float64(width) * fraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

// interpolateColor maps value onto the 255..240 greyscale ramp, dimming as the
// retry budget is spent.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	interpolated := 255.0 - 15.0*normalized

	return lipgloss.Color(strconv.Itoa(int(interpolated)))
}
