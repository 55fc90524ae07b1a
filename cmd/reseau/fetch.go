package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/reseau/internal/ui"
	"github.com/ha1tch/reseau/pkg/api"
	"github.com/ha1tch/reseau/pkg/medias"
)

func fetchCmd(a *app) *cobra.Command {
	var (
		output string
		pages  int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the three collections for offline use",
		Long: `Fetch media, people and organisations from the API and write them as
medias.json, personnes.json and organisations.json, or as a single .reseau
archive. The result can be passed to the other commands with --data.

  reseau fetch -o ./data
  reseau fetch -o france.reseau --pages 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := api.New(api.Options{
				BaseURL:   a.cfg.API.BaseURL,
				PageLimit: a.cfg.API.PageLimit,
				Timeout:   a.cfg.API.Timeout.Std(),
				Retries:   a.cfg.API.Retries,
				Pages:     pages,
				Metrics:   a.metrics,
			})
			if err != nil {
				return err
			}

			ui.Banner(cmd.ErrOrStderr(), "fetch "+a.cfg.API.BaseURL)
			ds, err := c.FetchAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch from %s: %w", a.cfg.API.BaseURL, err)
			}

			if strings.EqualFold(filepath.Ext(output), ".reseau") {
				err = medias.WriteArchiveFile(output, ds)
			} else {
				err = medias.WriteDir(output, ds)
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			ui.Table(cmd.OutOrStdout(), []string{"Collection", "Nombre"}, [][]string{
				{api.CollectionMedias, fmt.Sprint(len(ds.Medias))},
				{api.CollectionPersonnes, fmt.Sprint(len(ds.Personnes))},
				{api.CollectionOrganisations, fmt.Sprint(len(ds.Organisations))},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "\n  %s %s\n", ui.StatusIcon(true), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "data", "Output directory, or a .reseau archive")
	cmd.Flags().IntVar(&pages, "pages", 1, "Pages read per collection")
	return cmd
}
