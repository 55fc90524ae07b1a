package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/ha1tch/reseau/internal/ui"
	"github.com/ha1tch/reseau/pkg/graph"
	"github.com/ha1tch/reseau/pkg/physics"
	"github.com/ha1tch/reseau/pkg/render"
	"github.com/ha1tch/reseau/pkg/reseau"
)

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return "svg"
	case ".dot", ".gv":
		return "dot"
	default:
		return "png"
	}
}

func renderCmd(a *app) *cobra.Command {
	var (
		output   string
		format   string
		steps    int
		width    int
		height   int
		title    string
		noLabels bool
		noLegend bool
		filter   string
		search   string
		focus    string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Lay out the network and write it as PNG, SVG or DOT",
		Long: `Run the force simulation headless until the layout settles, or for at
most --steps frames, then write the network.

  reseau render -o reseau.png
  reseau render --data ./data -o reseau.svg --filter organisation
  reseau render --focus "media-Le Monde" -o lemonde.png
  reseau render --format dot -o - | dot -Tpdf -o reseau.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = formatFromPath(output)
			}
			if format != "png" && format != "svg" && format != "dot" {
				return fmt.Errorf("unknown format %q (png, svg or dot)", format)
			}
			kind := graph.Kind(filter)
			if kind != "" && !kind.Valid() {
				return fmt.Errorf("unknown kind %q", filter)
			}
			bg, err := colorful.Hex(a.cfg.Render.Background)
			if err != nil {
				return fmt.Errorf("render background: %w", err)
			}
			if width == 0 {
				width = a.cfg.View.Width
			}
			if height == 0 {
				height = a.cfg.View.Height
			}

			ds, err := a.dataset(cmd.Context())
			if err != nil {
				return err
			}

			profile := a.cfg.PhysicsProfile()
			sched := physics.NewManualScheduler(time.Unix(0, 0), profile.FrameInterval)
			s := reseau.New(reseau.Options{
				Profile:   profile,
				Scheduler: sched,
				Width:     float64(width),
				Height:    float64(height),
				Metrics:   a.metrics,
			})
			defer s.Close()

			st := s.Load(ds)
			if st.Nodes == 0 {
				ui.Warn.Fprintln(cmd.ErrOrStderr(), "  Aucune donnée disponible")
			}
			frames := sched.Run(steps)

			s.SetFilter(kind)
			s.SetSearch(search)
			if focus != "" {
				if !s.Select(focus) {
					return fmt.Errorf("no node %q", focus)
				}
				s.ToggleFocus()
			}

			opts := render.DefaultOptions()
			opts.Width, opts.Height = width, height
			opts.Supersample = a.cfg.Render.Scale
			opts.Labels = a.cfg.View.Labels && !noLabels
			opts.Legend = !noLegend
			opts.Title = title
			opts.Background = bg

			var w io.Writer = cmd.OutOrStdout()
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			start := time.Now()
			frame := s.Frame()
			switch format {
			case "png":
				err = render.PNG(w, frame, opts)
			case "svg":
				err = render.SVG(w, frame, opts)
			case "dot":
				_, err = io.WriteString(w, graph.GenerateDOT(frame.Graph, title))
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", format, err)
			}
			a.metrics.RecordRender(format, time.Since(start))

			if output != "-" {
				settled := ui.StatusIcon(!s.Running())
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s  %d nodes, %d edges, %d frames %s\n",
					ui.Good.Sprint("wrote"), output, st.Nodes, st.Edges, frames, settled)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "reseau.png", "Output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "png, svg or dot (default: from the output extension)")
	cmd.Flags().IntVar(&steps, "steps", 2000, "Maximum simulation frames")
	cmd.Flags().IntVar(&width, "width", 0, "Image width (default: view.width)")
	cmd.Flags().IntVar(&height, "height", 0, "Image height (default: view.height)")
	cmd.Flags().StringVar(&title, "title", "", "Title drawn at the top")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "Omit node labels")
	cmd.Flags().BoolVar(&noLegend, "no-legend", false, "Omit the legend")
	cmd.Flags().StringVar(&filter, "filter", "", "Show one kind only (media, personne, organisation)")
	cmd.Flags().StringVar(&search, "search", "", "Show nodes whose name contains this text")
	cmd.Flags().StringVar(&focus, "focus", "", "Dim everything not connected to this node id")
	return cmd
}
