package profile

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/blackboxsec/blackbox/internal/core"
	apperrors "github.com/blackboxsec/blackbox/internal/errors"
	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// CommandRunner executes one OS command. The switcher uses it for interface
// and tethering changes; tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands through os/exec with a per-command timeout.
type ExecRunner struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// Run executes the command and returns an error carrying captured output when
// the command fails.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w (output: %s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// SwitcherOptions holds the dependencies for creating a Switcher.
type SwitcherOptions struct {
	Catalog *Catalog
	Runner  CommandRunner
	Log     core.ProfileLogRepository
	Logger  *slog.Logger

	// InitialProfile is the profile assumed active before any recorded
	// switch. LoadActive overrides it with the latest profiles_log entry.
	InitialProfile string

	// TetheringCommand is the executable invoked with the profile's
	// internet_via mode ("wifi", "bluetooth" or "off").
	TetheringCommand string
}

// Switcher changes the active audit/tethering profile. Switches are
// serialized with a mutex; the design assumes a single worker process per
// host, since interface state is host-global.
type Switcher struct {
	catalog          *Catalog
	runner           CommandRunner
	log              core.ProfileLogRepository
	logger           *slog.Logger
	tetheringCommand string

	mu      sync.Mutex
	current string
}

// NewSwitcher creates a Switcher with the given dependencies.
func NewSwitcher(opts SwitcherOptions) *Switcher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TetheringCommand == "" {
		opts.TetheringCommand = "tethering_switch"
	}

	return &Switcher{
		catalog:          opts.Catalog,
		runner:           opts.Runner,
		log:              opts.Log,
		logger:           opts.Logger,
		tetheringCommand: opts.TetheringCommand,
		current:          opts.InitialProfile,
	}
}

// Active returns the profile currently believed active.
func (s *Switcher) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LoadActive seeds the active profile from the most recent profiles_log
// entry. Called once at startup; an empty log leaves the initial profile in
// place.
func (s *Switcher) LoadActive(ctx context.Context) error {
	changes, err := s.log.List(ctx, 1)
	if err != nil {
		return fmt.Errorf("load active profile: %w", err)
	}
	if len(changes) == 0 {
		return nil
	}

	s.mu.Lock()
	s.current = changes[0].NewProfile
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "restored active profile from log",
		"profile", changes[0].NewProfile)
	return nil
}

// Ensure activates the profile required for the given job type, if any.
// Types with no required profile are a no-op.
func (s *Switcher) Ensure(ctx context.Context, jobType model.JobType) error {
	required := ForJobType(jobType)
	if required == "" {
		return nil
	}
	reason := "required by " + string(jobType) + " job"
	return s.Set(ctx, required, reason, model.TriggeredByWorker)
}

// Set activates the named profile. Switching to the already-active profile is
// a no-op. Interface and tethering command failures are logged but do not
// fail the switch; an unknown profile or a failed audit-log append does.
func (s *Switcher) Set(ctx context.Context, name, reason, triggeredBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.catalog.Get(name)
	if !ok {
		return apperrors.NotFoundf("unknown profile %q", name)
	}

	if s.current == name {
		s.logger.DebugContext(ctx, "profile already active", "profile", name)
		return nil
	}

	old := s.current
	s.logger.InfoContext(ctx, "switching profile",
		"old", old,
		"new", name,
		"triggered_by", triggeredBy)

	s.applyInterfaces(ctx, p.Interfaces)
	s.applyTethering(ctx, p)

	req := &model.AppendProfileChangeRequest{NewProfile: name}
	if old != "" {
		req.OldProfile = &old
	}
	if reason != "" {
		req.Reason = &reason
	}
	if triggeredBy != "" {
		req.TriggeredBy = &triggeredBy
	}
	if _, err := s.log.Append(ctx, req); err != nil {
		return fmt.Errorf("record profile change: %w", err)
	}

	s.current = name
	s.logger.InfoContext(ctx, "profile switch completed", "old", old, "new", name)
	return nil
}

// applyInterfaces brings interfaces down before bringing the new set up.
// Interface names starting with "hci" are Bluetooth adapters managed via
// hciconfig; everything else goes through ip link.
func (s *Switcher) applyInterfaces(ctx context.Context, ifaces Interfaces) {
	for _, iface := range ifaces.Disable {
		if iface == "" {
			continue
		}
		s.runInterfaceCommand(ctx, iface, "down")
	}
	for _, iface := range ifaces.Enable {
		if iface == "" {
			continue
		}
		s.runInterfaceCommand(ctx, iface, "up")
	}
}

func (s *Switcher) runInterfaceCommand(ctx context.Context, iface, state string) {
	var err error
	if strings.HasPrefix(iface, "hci") {
		err = s.runner.Run(ctx, "hciconfig", iface, state)
	} else {
		err = s.runner.Run(ctx, "ip", "link", "set", iface, state)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "interface command failed",
			"interface", iface,
			"state", state,
			"error", err)
		return
	}
	s.logger.DebugContext(ctx, "interface state changed", "interface", iface, "state", state)
}

func (s *Switcher) applyTethering(ctx context.Context, p Profile) {
	switch p.InternetVia {
	case "wifi", "bluetooth", "off":
		if err := s.runner.Run(ctx, s.tetheringCommand, p.InternetVia); err != nil {
			s.logger.ErrorContext(ctx, "tethering switch failed",
				"mode", p.InternetVia,
				"error", err)
		}
	case "":
	default:
		s.logger.WarnContext(ctx, "unknown internet_via mode",
			"mode", p.InternetVia,
			"profile", p.Name)
	}
}
