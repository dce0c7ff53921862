package sitecmd

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-press/internal/generator"
)

// ErrCommandsDisabled indicates the command layer is switched off by configuration.
var ErrCommandsDisabled = errors.New("sitecmd: command layer disabled")

const (
	buildSiteMessageType = "press.site.build"
	diffSiteMessageType  = "press.site.diff"
	cleanSiteMessageType = "press.site.clean"
)

// ResultCallback receives build results produced by generator operations. The
// callback is optional and invoked synchronously from the handler when a
// BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a site command execution.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand executes a full generator build.
type BuildSiteCommand struct {
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	Workers        int            `json:"workers,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures the worker count is sane; zero means "pick a default".
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	if m.Workers < 0 {
		errs["workers"] = validation.NewError("press.site.build.workers_invalid", "workers must not be negative")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DiffSiteCommand performs a dry-run build to surface differences without
// writing artifacts.
type DiffSiteCommand struct {
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (DiffSiteCommand) Type() string { return diffSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (DiffSiteCommand) Validate() error { return nil }

// CleanSiteCommand removes the generated output directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution. A nil
// CommandsEnabled gate leaves the command layer on; a nil GeneratorEnabled gate
// keeps the generator off.
type FeatureGates struct {
	GeneratorEnabled func() bool
	CommandsEnabled  func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}

func (g FeatureGates) commandsEnabled() bool {
	if g.CommandsEnabled == nil {
		return true
	}
	return g.CommandsEnabled()
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
