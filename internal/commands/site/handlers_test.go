package sitecmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-press/internal/generator"
)

type stubService struct {
	buildOpts  *generator.BuildOptions
	buildErr   error
	cleanCalls int
	cleanErr   error
	result     *generator.BuildResult
}

func (s *stubService) Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	s.buildOpts = &opts
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	if s.result != nil {
		return s.result, nil
	}
	return &generator.BuildResult{PagesBuilt: 1}, nil
}

func (s *stubService) Clean(ctx context.Context) error {
	s.cleanCalls++
	return s.cleanErr
}

func enabledGates() FeatureGates {
	return FeatureGates{GeneratorEnabled: func() bool { return true }}
}

func TestBuildSiteHandlerExecutes(t *testing.T) {
	service := &stubService{}
	var envelope ResultEnvelope
	handler := NewBuildSiteHandler(service, nil, enabledGates())

	err := handler.Execute(context.Background(), BuildSiteCommand{
		Force:         true,
		IncludeDrafts: true,
		Workers:       3,
		ResultCallback: func(e ResultEnvelope) {
			envelope = e
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if service.buildOpts == nil {
		t.Fatal("service was not invoked")
	}
	if !service.buildOpts.Force || !service.buildOpts.IncludeDrafts {
		t.Errorf("options not forwarded: %+v", service.buildOpts)
	}
	if service.buildOpts.Workers != 3 {
		t.Errorf("worker count not forwarded, got %d", service.buildOpts.Workers)
	}
	if envelope.Result == nil || envelope.Result.PagesBuilt != 1 {
		t.Errorf("callback should receive the build result, got %+v", envelope.Result)
	}
	if envelope.Metadata["operation"] != "build" {
		t.Errorf("unexpected metadata %v", envelope.Metadata)
	}
}

func TestBuildSiteHandlerDisabled(t *testing.T) {
	service := &stubService{}
	handler := NewBuildSiteHandler(service, nil, FeatureGates{})

	err := handler.Execute(context.Background(), BuildSiteCommand{})
	if err == nil {
		t.Fatal("expected error when generator is disabled")
	}
	if !errors.Is(err, generator.ErrServiceDisabled) {
		t.Errorf("expected ErrServiceDisabled, got %v", err)
	}
	if service.buildOpts != nil {
		t.Error("service must not run when disabled")
	}
}

func TestBuildSiteHandlerCommandsGate(t *testing.T) {
	service := &stubService{}
	gates := FeatureGates{
		GeneratorEnabled: func() bool { return true },
		CommandsEnabled:  func() bool { return false },
	}
	handler := NewBuildSiteHandler(service, nil, gates)

	err := handler.Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, ErrCommandsDisabled) {
		t.Fatalf("expected ErrCommandsDisabled, got %v", err)
	}
	if service.buildOpts != nil {
		t.Error("service must not run when the command layer is disabled")
	}
}

func TestBuildSiteCommandValidation(t *testing.T) {
	handler := NewBuildSiteHandler(&stubService{}, nil, enabledGates())

	if err := handler.Execute(context.Background(), BuildSiteCommand{Workers: -1}); err == nil {
		t.Fatal("expected validation error for negative workers")
	}
}

func TestDiffSiteHandlerForcesDryRun(t *testing.T) {
	service := &stubService{}
	handler := NewDiffSiteHandler(service, nil, enabledGates())

	if err := handler.Execute(context.Background(), DiffSiteCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if service.buildOpts == nil || !service.buildOpts.DryRun {
		t.Errorf("diff must run in dry-run mode, got %+v", service.buildOpts)
	}
}

func TestCleanSiteHandler(t *testing.T) {
	service := &stubService{}
	handler := NewCleanSiteHandler(service, nil, enabledGates())

	if err := handler.Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if service.cleanCalls != 1 {
		t.Errorf("expected 1 clean call, got %d", service.cleanCalls)
	}
}

func TestCleanSiteHandlerPropagatesErrors(t *testing.T) {
	service := &stubService{cleanErr: errors.New("boom")}
	handler := NewCleanSiteHandler(service, nil, enabledGates())

	if err := handler.Execute(context.Background(), CleanSiteCommand{}); err == nil {
		t.Fatal("expected clean error")
	}
}
