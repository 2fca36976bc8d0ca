package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/extension"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Site configuration file path" default:"site.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Clean       bool   `help:"Empty the output directory before writing instead of manifest-based pruning"`
		Drafts      bool   `short:"D" help:"Include draft pages"`
		MetricsFile string `help:"Write build metrics to this file in Prometheus text format" placeholder:"PATH"`
	} `cmd:"" help:"Build the site into the configured output directory"`

	CleanCache struct{} `cmd:"" name:"clean-cache" help:"Remove the build manifest and cached image transforms"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	var err error
	switch ctx.Command() {
	case "build":
		err = runBuild()
	case "clean-cache":
		err = runCleanCache()
	case "version":
		fmt.Printf("sitegen %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Build.Drafts {
		cfg.IncludeDrafts = true
	}

	registry := extension.NewRegistry()
	if err := extension.RegisterBuiltins(registry); err != nil {
		return err
	}

	service := build.NewService().WithRegistry(registry)

	var promReg *prom.Registry
	if CLI.Build.MetricsFile != "" {
		promReg = prom.NewRegistry()
		service = service.WithRecorder(metrics.NewPrometheusRecorder(promReg))
	}

	written, err := service.Build(context.Background(), cfg, build.Options{
		Clean:   CLI.Build.Clean,
		Verbose: CLI.Verbose,
	})
	if promReg != nil {
		if werr := metrics.WriteTextfile(promReg, CLI.Build.MetricsFile); werr != nil {
			slog.Warn("Metrics export failed", slog.String("error", werr.Error()))
		}
	}
	if err != nil {
		return err
	}

	for _, path := range written {
		fmt.Println(path)
	}
	return nil
}

func runCleanCache() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if err := os.Remove(build.ManifestPath(cfg.CacheDir)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.RemoveAll(filepath.Join(cfg.CacheDir, "transforms")); err != nil {
		return err
	}
	slog.Info("Cache cleared", slog.String("cache_dir", cfg.CacheDir))
	return nil
}
