package sitecmd

import (
	"context"

	"github.com/goliatone/go-press/internal/commands"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// BuildSiteHandler orchestrates generator builds using the shared command
// handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsDisabled
		}
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			Force:         msg.Force,
			DryRun:        msg.DryRun,
			IncludeDrafts: msg.IncludeDrafts,
			Workers:       msg.Workers,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.Force {
				fields["force"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.IncludeDrafts {
				fields["include_drafts"] = true
			}
			if msg.Workers > 0 {
				fields["workers"] = msg.Workers
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DiffSiteHandler performs dry-run builds for diffing workflows.
type DiffSiteHandler struct {
	inner *commands.Handler[DiffSiteCommand]
}

// NewDiffSiteHandler constructs a handler that always runs the generator in dry-run mode.
func NewDiffSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[DiffSiteCommand]) *DiffSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg DiffSiteCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsDisabled
		}
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			DryRun:        true,
			IncludeDrafts: msg.IncludeDrafts,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "diff",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[DiffSiteCommand]{
		commands.WithLogger[DiffSiteCommand](baseLogger),
		commands.WithOperation[DiffSiteCommand]("site.diff"),
		commands.WithTelemetry(commands.DefaultTelemetry[DiffSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DiffSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DiffSiteCommand].
func (h *DiffSiteHandler) Execute(ctx context.Context, msg DiffSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler removes generated output.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that clears the output directory.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsDisabled
		}
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
