package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gsmigrate/internal/forum"
	"github.com/hyperifyio/gsmigrate/internal/profile"
)

type App struct {
	cfg      Config
	profiles profile.Set
	headers  forum.HeaderTable
}

func New(ctx context.Context, cfg Config) (*App, error) {
	profiles, err := profile.Builtin().With(cfg.Profiles...)
	if err != nil {
		return nil, fmt.Errorf("profiles: %w", err)
	}

	headers := forum.DefaultHeaders()
	if cfg.HeadersPath != "" {
		user, err := forum.LoadHeaders(cfg.HeadersPath)
		if err != nil {
			return nil, fmt.Errorf("forum headers: %w", err)
		}
		headers = headers.Merge(user)
		log.Debug().Str("file", cfg.HeadersPath).Strs("locales", user.Locales()).Msg("loaded forum header table")
	}

	return &App{cfg: cfg, profiles: profiles, headers: headers}, nil
}

// Profiles returns the builtin profiles merged with the configured ones.
func (a *App) Profiles() profile.Set { return a.profiles }

// Headers returns the forum header table in effect.
func (a *App) Headers() forum.HeaderTable { return a.headers }

// Profile looks up a profile by name.
func (a *App) Profile(name string) (profile.Profile, error) {
	return a.profiles.Get(name)
}
