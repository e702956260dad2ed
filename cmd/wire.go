package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/stk-connect/internal/adapters/net/tcp"
	statusadapter "github.com/bnema/stk-connect/internal/adapters/render/status"
	tomlrepo "github.com/bnema/stk-connect/internal/adapters/repo/toml"
	"github.com/bnema/stk-connect/internal/application"
	"github.com/bnema/stk-connect/internal/domain"
	"github.com/bnema/stk-connect/internal/logger"
	"github.com/bnema/stk-connect/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix   = "STKC"
	profileKey  = "profile"
	logLevelKey = "log.level"
)

type app struct {
	config           *viper.Viper
	profiles         *application.ProfileService
	profilesPath     string
	dialer           ports.Dialer
	writeTimeout     time.Duration
	sessionRenderer  func(application.SessionSummary) (string, error)
	profilesRenderer func([]domain.Profile) (string, error)
}

func wireApp() (*app, error) {
	config := viper.New()
	config.SetEnvPrefix(envPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	config.SetDefault(logLevelKey, "warn")

	repo, err := tomlrepo.NewRepository(config)
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}

	return &app{
		config:           config,
		profiles:         application.NewProfileService(repo, os.Getenv),
		profilesPath:     repo.Path(),
		dialer:           tcp.NewDialer(tcp.DefaultTimeout, tcp.DefaultKeepAlive),
		writeTimeout:     10 * time.Second,
		sessionRenderer:  statusadapter.RenderSession,
		profilesRenderer: statusadapter.RenderProfiles,
	}, nil
}

func (a *app) logger(w io.Writer) zerolog.Logger {
	return logger.New(w, a.config.GetString(logLevelKey))
}

func (a *app) profileName() domain.ProfileName {
	return domain.ProfileName(strings.TrimSpace(a.config.GetString(profileKey)))
}

// resolveProfile layers command-line flags over the selected profile, which itself
// sits over the STK_* environment and the built-in defaults.
func (a *app) resolveProfile(cmd *cobra.Command, flags *sessionFlags) (domain.Profile, error) {
	profile, err := a.profiles.Resolve(cmd.Context(), a.profileName())
	if err != nil {
		return domain.Profile{}, err
	}

	flags.apply(cmd, &profile)
	if err := expandProfilePaths(&profile); err != nil {
		return domain.Profile{}, err
	}
	if err := profile.Endpoint.Validate(); err != nil {
		return domain.Profile{}, err
	}

	return profile, profile.Launch.Validate()
}

func expandProfilePaths(profile *domain.Profile) error {
	for _, path := range []*string{&profile.Launch.InstallDir, &profile.Launch.ConfigDir, &profile.Launch.StderrPath} {
		expanded, err := expandHome(*path)
		if err != nil {
			return err
		}
		*path = expanded
	}

	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
