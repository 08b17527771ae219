package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Yamashou/buildergen/codegen"
	"github.com/Yamashou/buildergen/config"
	"github.com/Yamashou/buildergen/logger"
	"github.com/Yamashou/buildergen/plugins"
	"github.com/Yamashou/buildergen/targetparser"
)

func run(ctx context.Context, opts *options) error {
	log, err := logger.NewDevelopment(opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfgFile := opts.configFile
	if cfgFile == "" {
		cfgFile, err = config.FindConfigFile(".", config.DefaultFilenames)
		if err != nil {
			return fmt.Errorf("failed to find config file: %w", err)
		}
	}
	log.Debug("config file", zap.String("path", cfgFile))

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	report, err := generate(ctx, cfg, afero.NewOsFs(), logger.New(log))
	if err != nil {
		return err
	}

	return report.Err()
}

// generate loads the targets of every configured host and runs one round over them.
func generate(ctx context.Context, cfg *config.Config, fs afero.Fs, reporter logger.Reporter) (*plugins.Report, error) {
	targets, err := loadTargets(ctx, cfg, fs)
	if err != nil {
		return nil, err
	}

	report, err := plugins.GenerateCode(cfg, targets, fs, reporter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	return report, nil
}

func loadTargets(ctx context.Context, cfg *config.Config, fs afero.Fs) ([]*codegen.Target, error) {
	var targets []*codegen.Target

	if len(cfg.Packages) > 0 {
		loaded, err := targetparser.NewGoPackageLoader(cfg.Dir, cfg.Output.ImportPath).Load(ctx, cfg.Packages)
		if err != nil {
			return nil, fmt.Errorf("failed to load packages: %w", err)
		}
		targets = append(targets, loaded...)
	}

	if cfg.GraphQL != nil {
		loader := targetparser.NewGraphQLLoader(fs, cfg.GraphQL.Model.ImportPath, cfg.GraphQL.Model.Package, cfg.Marker)
		loaded, err := loader.Load(cfg.GraphQL.SchemaFiles, cfg.GraphQL.Types)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
		targets = append(targets, loaded...)
	}

	return targets, nil
}
