package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/blackboxsec/blackbox/internal/core"
	apperrors "github.com/blackboxsec/blackbox/internal/errors"
	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/profile"
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Catalog  *profile.Catalog
	Switcher *profile.Switcher
	Jobs     core.JobRepository
	Log      core.ProfileLogRepository
	Logger   *slog.Logger
}

// ProfileService exposes the profile catalog and switch entry points to the
// API. Switches requested here refuse to proceed while jobs are running; the
// worker path bypasses this service and switches for the job it owns.
type ProfileService struct {
	catalog  *profile.Catalog
	switcher *profile.Switcher
	jobs     core.JobRepository
	log      core.ProfileLogRepository
	logger   *slog.Logger
}

// ActiveProfile describes the currently active profile for API consumers.
type ActiveProfile struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	InternetVia string   `json:"internet_via,omitempty"`
	Modules     []string `json:"modules_enabled,omitempty"`
	Available   []string `json:"available"`
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(opts ProfileServiceOptions) (*ProfileService, error) {
	if opts.Catalog == nil {
		return nil, errors.New("profile catalog is required")
	}
	if opts.Switcher == nil {
		return nil, errors.New("profile switcher is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Log == nil {
		return nil, errors.New("ProfileLogRepository is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &ProfileService{
		catalog:  opts.Catalog,
		switcher: opts.Switcher,
		jobs:     opts.Jobs,
		log:      opts.Log,
		logger:   opts.Logger.With("component", "profile_service"),
	}, nil
}

// Active returns the active profile and the catalog overview.
func (s *ProfileService) Active(_ context.Context) *ActiveProfile {
	active := s.switcher.Active()
	info := &ActiveProfile{
		Name:      active,
		Available: s.catalog.Names(),
	}
	if p, ok := s.catalog.Get(active); ok {
		info.Description = p.Description
		info.InternetVia = p.InternetVia
		info.Modules = p.ModulesEnabled
	}
	return info
}

// Switch activates the named profile on behalf of an API or CLI actor. It
// refuses while any job is running: interface changes under a live audit
// would corrupt the capture.
func (s *ProfileService) Switch(ctx context.Context, name, reason, triggeredBy string) error {
	if name == "" {
		return apperrors.Validation("profile name is required")
	}
	if triggeredBy == "" {
		triggeredBy = model.TriggeredByAPI
	}

	stats, err := s.jobs.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.Running > 0 {
		return apperrors.Conflictf("%d job(s) running; refusing to switch profile", stats.Running)
	}

	return s.switcher.Set(ctx, name, reason, triggeredBy)
}

// Log returns the most recent profile changes, newest first.
func (s *ProfileService) Log(ctx context.Context, limit int) ([]*model.ProfileChange, error) {
	return s.log.List(ctx, limit)
}
