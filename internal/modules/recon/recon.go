// Package recon implements the Wi-Fi and Bluetooth audit handlers. Each job
// type maps to one OS scan command whose output is streamed into the job's
// Run record.
package recon

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/worker"
)

// CommandSpec is the OS command template executed for one audit job type.
type CommandSpec struct {
	Name string
	Args []string
}

// DefaultCommands maps the built-in audit types to their scan commands.
// Deployments override these per host (interface names vary).
func DefaultCommands() map[model.JobType]CommandSpec {
	return map[model.JobType]CommandSpec{
		model.JobTypeWifiRecon: {
			Name: "nmcli",
			Args: []string{"-t", "-f", "SSID,BSSID,CHAN,SIGNAL,SECURITY", "dev", "wifi", "list", "--rescan", "yes"},
		},
		model.JobTypeWifiActive: {
			Name: "iw",
			Args: []string{"dev", "wlan0", "scan"},
		},
		model.JobTypeBTRecon: {
			Name: "hcitool",
			Args: []string{"scan", "--flush"},
		},
		model.JobTypeBTActive: {
			Name: "hcitool",
			Args: []string{"inq"},
		},
	}
}

// CommandRunner executes one OS command, streaming its output into the given
// writers. Tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
}

// ExecRunner runs commands through os/exec. A non-zero exit surfaces as an
// *exec.ExitError so the executor can record the real exit code.
type ExecRunner struct{}

// Run executes the command with output wired to the writers.
func (ExecRunner) Run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Handler executes the scan command for one audit job type.
type Handler struct {
	jobType model.JobType
	spec    CommandSpec
	runner  CommandRunner
}

// New creates a Handler for the given job type and command.
func New(jobType model.JobType, spec CommandSpec, runner CommandRunner) *Handler {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Handler{jobType: jobType, spec: spec, runner: runner}
}

// Run is the worker.HandlerFunc for this audit type.
func (h *Handler) Run(ctx context.Context, rc *worker.RunContext) error {
	profileName := ""
	if rc.Job.Profile != nil {
		profileName = *rc.Job.Profile
	}
	rc.Logger.InfoContext(ctx, "running audit command",
		"command", h.spec.Name,
		"args", h.spec.Args,
		"profile", profileName)

	if err := h.runner.Run(ctx, rc.Stdout, rc.Stderr, h.spec.Name, h.spec.Args...); err != nil {
		return fmt.Errorf("%s: %w", h.spec.Name, err)
	}
	return nil
}

// Handlers builds the handler funcs for every command in the map.
func Handlers(commands map[model.JobType]CommandSpec, runner CommandRunner) map[model.JobType]worker.HandlerFunc {
	handlers := make(map[model.JobType]worker.HandlerFunc, len(commands))
	for jobType, spec := range commands {
		handlers[jobType] = New(jobType, spec, runner).Run
	}
	return handlers
}
