package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/stk-connect/internal/domain"
	"github.com/bnema/stk-connect/internal/ports"
)

type ProfileService struct {
	repo   ports.ProfileRepository
	getenv func(string) string
}

// NewProfileService reads STK_INSTALL_DIR and STK_CONFIG_DIR through getenv when
// resolving sessions; a nil getenv disables the environment fallback.
func NewProfileService(repo ports.ProfileRepository, getenv func(string) string) *ProfileService {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	return &ProfileService{repo: repo, getenv: getenv}
}

func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	return profiles, nil
}

func (s *ProfileService) Get(ctx context.Context, name domain.ProfileName) (domain.Profile, error) {
	profile, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// GetOrDefault returns the stored profile, or a new one with default settings when
// no profile of that name exists.
func (s *ProfileService) GetOrDefault(ctx context.Context, name domain.ProfileName) (domain.Profile, error) {
	profile, err := s.repo.GetByName(ctx, name)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return domain.Profile{
		Name:     name,
		Endpoint: domain.DefaultEndpoint(),
		Launch:   domain.DefaultLaunchConfig(),
	}, nil
}

func (s *ProfileService) Save(ctx context.Context, profile domain.Profile) error {
	profile.Name = domain.ProfileName(strings.TrimSpace(string(profile.Name)))
	if err := s.repo.Save(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}

func (s *ProfileService) Remove(ctx context.Context, name domain.ProfileName) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	return nil
}

// Resolve builds the settings for a session. An empty name yields the defaults.
// Install and config directories left empty by the profile are taken from
// STK_INSTALL_DIR and STK_CONFIG_DIR. Command-line overrides are applied by the caller.
func (s *ProfileService) Resolve(ctx context.Context, name domain.ProfileName) (domain.Profile, error) {
	profile := domain.Profile{
		Endpoint: domain.DefaultEndpoint(),
		Launch:   domain.DefaultLaunchConfig(),
	}

	if name != "" {
		stored, err := s.repo.GetByName(ctx, name)
		if err != nil {
			return domain.Profile{}, fmt.Errorf("resolve profile: %w", err)
		}
		profile = stored
	}

	if profile.Launch.InstallDir == "" {
		profile.Launch.InstallDir = s.getenv(domain.EnvInstallDir)
	}
	if profile.Launch.ConfigDir == "" {
		profile.Launch.ConfigDir = s.getenv(domain.EnvConfigDir)
	}

	return profile, nil
}
