package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/ha1tch/reseau/pkg/api"
	"github.com/ha1tch/reseau/pkg/config"
	"github.com/ha1tch/reseau/pkg/logger"
	"github.com/ha1tch/reseau/pkg/logger/console"
	"github.com/ha1tch/reseau/pkg/medias"
	"github.com/ha1tch/reseau/pkg/metrics"
	"github.com/ha1tch/reseau/pkg/physics"
	"github.com/ha1tch/reseau/pkg/reseau"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "reseauview: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		dataPath string
		debug    bool
	)

	cmd := &cobra.Command{
		Use:   "reseauview",
		Short: "Explore the media ownership network in the terminal",
		Long: `Lay out the network live in the terminal. Drag nodes with the left button,
pan with the right or middle button and zoom with the wheel.

  reseauview
  reseauview --data ./data`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(); err != nil {
				return err
			}
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if debug {
				cfg.Log.Debug = true
			}

			// The screen belongs to tcell, so logs always go to a file.
			logPath := cfg.Log.File
			if logPath == "" {
				logPath = filepath.Join(os.TempDir(), "reseauview.log")
			}
			l, f, err := console.NewFileLogger(logPath, console.ConsoleLoggerParams{Debug: cfg.Log.Debug})
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			logger.Init(l)

			bg, err := colorful.Hex(cfg.Render.Background)
			if err != nil {
				return fmt.Errorf("render background: %w", err)
			}

			reg := metrics.NewRegistry()
			load := func(ctx context.Context) (medias.Dataset, error) {
				if dataPath != "" {
					return medias.Load(dataPath)
				}
				c, err := api.FromConfig(cfg.API, reg)
				if err != nil {
					return medias.Dataset{}, err
				}
				return c.FetchAll(ctx)
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initialise screen: %w", err)
			}
			defer screen.Fini()
			screen.EnableMouse(tcell.MouseMotionEvents)
			screen.Clear()

			v := newViewer(screen, viewerOptions{
				BufferWidth: float64(cfg.View.Width),
				Labels:      cfg.View.Labels,
				Background:  bg,
				Metrics:     reg,
			})
			profile := cfg.PhysicsProfile()
			v.session = reseau.New(reseau.Options{
				Profile:   profile,
				Scheduler: &physics.TimerScheduler{Period: profile.FrameInterval, Post: v.post},
				Width:     float64(cfg.View.Width),
				Height:    float64(cfg.View.Height),
				Metrics:   reg,
			})
			defer v.session.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go v.load(ctx, load)

			logger.Info("viewer started", "profile", profile.Name, "data", dataPath)
			v.run()
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "Config file (default "+config.DefaultPath()+")")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Read the dataset from a directory or .reseau archive instead of the API")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log debug output")
	return cmd
}
