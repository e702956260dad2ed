package domain

import (
	"errors"
	"fmt"
	"strings"
)

type ProfileName string

// Profile is a saved endpoint plus launch settings, selected with --profile.
type Profile struct {
	Name     ProfileName
	Endpoint Endpoint
	Launch   LaunchConfig
}

func (p Profile) Validate() error {
	if strings.TrimSpace(string(p.Name)) == "" {
		return errors.New("profile name is empty")
	}
	if err := p.Endpoint.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	if err := p.Launch.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}

	return nil
}
