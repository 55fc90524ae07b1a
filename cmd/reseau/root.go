package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ha1tch/reseau/internal/ui"
	"github.com/ha1tch/reseau/pkg/api"
	"github.com/ha1tch/reseau/pkg/config"
	"github.com/ha1tch/reseau/pkg/logger"
	"github.com/ha1tch/reseau/pkg/logger/console"
	"github.com/ha1tch/reseau/pkg/medias"
	"github.com/ha1tch/reseau/pkg/metrics"
)

var version = "0.3.0"

// app carries the flags and state shared by every subcommand.
type app struct {
	cfgFile  string
	dataPath string
	debug    bool

	cfg     *config.Config
	metrics *metrics.Registry
	logFile io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{metrics: metrics.NewRegistry()}

	root := &cobra.Command{
		Use:   "reseau",
		Short: "réseau: the French media ownership network",
		Long: ui.Brand.Sprint("réseau") + ": lay out and explore who owns the French media\n" +
			ui.Subtle.Sprint("Render the network, list its biggest owners, fetch the data or serve live sessions"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logFile != nil {
				a.logFile.Close()
			}
		},
	}

	root.SetVersionTemplate("reseau {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVarP(&a.dataPath, "data", "d", "", "Read the dataset from a directory or .reseau archive instead of the API")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Log debug output")

	root.AddCommand(
		renderCmd(a),
		statsCmd(a),
		fetchCmd(a),
		serveCmd(a),
	)

	return root
}

// init loads the environment and config, and installs the logger.
func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Log.Debug = true
	}
	a.cfg = cfg

	params := console.ConsoleLoggerParams{Debug: cfg.Log.Debug, Output: cmd.ErrOrStderr()}
	if cfg.Log.File == "" {
		logger.Init(console.NewConsoleLogger(params))
		return nil
	}
	l, f, err := console.NewFileLogger(cfg.Log.File, params)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	a.logFile = f
	logger.Init(l)
	return nil
}

// dataset reads --data when given and fetches from the API otherwise.
func (a *app) dataset(ctx context.Context) (medias.Dataset, error) {
	if a.dataPath != "" {
		ds, err := medias.Load(a.dataPath)
		if err != nil {
			return medias.Dataset{}, fmt.Errorf("load %s: %w", a.dataPath, err)
		}
		logger.Debug("dataset read", "path", a.dataPath)
		return ds, nil
	}

	c, err := api.FromConfig(a.cfg.API, a.metrics)
	if err != nil {
		return medias.Dataset{}, err
	}
	ds, err := c.FetchAll(ctx)
	if err != nil {
		return medias.Dataset{}, fmt.Errorf("fetch from %s: %w", a.cfg.API.BaseURL, err)
	}
	return ds, nil
}
