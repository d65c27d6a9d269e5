package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// Endpoint is the connection profile for one external collaborator.
type Endpoint struct {
	Host  string
	Token string
}

// Registry resolves collaborator profiles from an ini-style credentials
// file. Each section names one collaborator, e.g. [gateway] or [generator].
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetEndpoint(ctx context.Context, profile string) (*Endpoint, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetEndpoint(_ context.Context, profile string) (*Endpoint, error) {
	section := cr.cfg.Section(profile)
	if section == nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	host := section.Key("host").String()
	if host == "" {
		return nil, fmt.Errorf("profile %s is missing a host", profile)
	}

	return &Endpoint{
		Host:  host,
		Token: section.Key("token").String(),
	}, nil
}
