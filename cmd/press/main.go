package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	"github.com/goliatone/go-press/internal/commands"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
	"github.com/goliatone/go-press/internal/generator"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "diff":
		err = runDiff(os.Args[2:])
	case "clean":
		err = runClean(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("press %s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: press <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  build   render the site into the output directory")
	fmt.Fprintln(os.Stderr, "  diff    dry-run build, reporting what would change")
	fmt.Fprintln(os.Stderr, "  clean   remove the output directory")
}

func commonFlags(fs *flag.FlagSet) *bootstrap.Options {
	opts := &bootstrap.Options{}
	fs.StringVar(&opts.ContentDir, "input", "content", "Path to the markdown content root")
	fs.StringVar(&opts.OutputDir, "output", "dist", "Directory where the rendered site is written")
	fs.StringVar(&opts.TemplatesDir, "templates", "templates", "Directory holding the HTML templates")
	fs.StringVar(&opts.AssetsDir, "assets", "", "Optional directory of static assets to copy")
	fs.StringVar(&opts.BaseURL, "base-url", "", "Absolute base URL used in feeds and the sitemap")
	fs.StringVar(&opts.SiteTitle, "title", "", "Site title surfaced to templates and feeds")
	fs.StringVar(&opts.SiteDescription, "description", "", "Site description surfaced to templates and feeds")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&opts.LogFormat, "log-format", "", "Log format (console, json, pretty)")
	return opts
}

// featureGates derives the handler gates from the resolved module configuration.
func featureGates(resources *bootstrap.Resources) sitecmd.FeatureGates {
	cfg := resources.Config
	return sitecmd.FeatureGates{
		GeneratorEnabled: func() bool { return cfg.Features.Generator && cfg.Generator.Enabled },
		CommandsEnabled:  func() bool { return cfg.Commands.Enabled },
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("press-build", flag.ExitOnError)
	opts := commonFlags(fs)
	fs.BoolVar(&opts.IncludeDrafts, "drafts", false, "Include draft posts in the build")
	fs.BoolVar(&opts.Incremental, "incremental", false, "Reuse unchanged pages from the previous build")
	fs.IntVar(&opts.Workers, "workers", 0, "Render worker count (0 picks a default)")
	force := fs.Bool("force", false, "Re-render everything, ignoring the previous build manifest")
	dryRun := fs.Bool("dry-run", false, "Run the full pipeline without writing output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bootstrap.LoadEnv()
	resources, err := moduleBuilder(bootstrap.ApplyEnv(*opts))
	if err != nil {
		return err
	}

	var handlerOpts []commands.HandlerOption[sitecmd.BuildSiteCommand]
	if timeout := resources.Config.Commands.Timeout; timeout > 0 {
		handlerOpts = append(handlerOpts, commands.WithTimeout[sitecmd.BuildSiteCommand](timeout))
	}
	handler := sitecmd.NewBuildSiteHandler(resources.Module.Generator(), resources.Logger, featureGates(resources), handlerOpts...)
	var result *generator.BuildResult
	cmd := sitecmd.BuildSiteCommand{
		Force:         *force,
		DryRun:        *dryRun,
		IncludeDrafts: opts.IncludeDrafts,
		Workers:       opts.Workers,
		ResultCallback: func(envelope sitecmd.ResultEnvelope) {
			result = envelope.Result
		},
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return err
	}
	printResult(result)
	return nil
}

func runDiff(args []string) error {
	fs := flag.NewFlagSet("press-diff", flag.ExitOnError)
	opts := commonFlags(fs)
	fs.BoolVar(&opts.IncludeDrafts, "drafts", false, "Include draft posts in the diff")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bootstrap.LoadEnv()
	resources, err := moduleBuilder(bootstrap.ApplyEnv(*opts))
	if err != nil {
		return err
	}

	var handlerOpts []commands.HandlerOption[sitecmd.DiffSiteCommand]
	if timeout := resources.Config.Commands.Timeout; timeout > 0 {
		handlerOpts = append(handlerOpts, commands.WithTimeout[sitecmd.DiffSiteCommand](timeout))
	}
	handler := sitecmd.NewDiffSiteHandler(resources.Module.Generator(), resources.Logger, featureGates(resources), handlerOpts...)
	var result *generator.BuildResult
	cmd := sitecmd.DiffSiteCommand{
		IncludeDrafts: opts.IncludeDrafts,
		ResultCallback: func(envelope sitecmd.ResultEnvelope) {
			result = envelope.Result
		},
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return err
	}
	printResult(result)
	return nil
}

func runClean(args []string) error {
	fs := flag.NewFlagSet("press-clean", flag.ExitOnError)
	opts := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	bootstrap.LoadEnv()
	resources, err := moduleBuilder(bootstrap.ApplyEnv(*opts))
	if err != nil {
		return err
	}

	var handlerOpts []commands.HandlerOption[sitecmd.CleanSiteCommand]
	if timeout := resources.Config.Commands.Timeout; timeout > 0 {
		handlerOpts = append(handlerOpts, commands.WithTimeout[sitecmd.CleanSiteCommand](timeout))
	}
	handler := sitecmd.NewCleanSiteHandler(resources.Module.Generator(), resources.Logger, featureGates(resources), handlerOpts...)
	if err := handler.Execute(context.Background(), sitecmd.CleanSiteCommand{}); err != nil {
		return err
	}
	fmt.Println("output directory removed")
	return nil
}

func printResult(result *generator.BuildResult) {
	if result == nil {
		return
	}
	mode := "build"
	if result.DryRun {
		mode = "dry-run"
	}
	fmt.Printf("%s complete: %d posts, %d pages written, %d reused, %d assets in %s\n",
		mode,
		result.PostsLoaded,
		result.PagesBuilt,
		result.PagesSkipped,
		result.AssetsCopied,
		result.Duration,
	)
}
