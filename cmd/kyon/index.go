package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kyon/internal/index"
	"kyon/internal/ingest"
	"kyon/internal/ui"
)

func (c *cli) indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan the content root into the bbolt index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := ingest.Scan(cmd.Context(), ingest.Options{
				Root:    c.cfg.Content.Dir,
				Strict:  c.cfg.Content.Strict,
				Workers: c.cfg.Build.Workers,
				Logger:  c.log,
			})
			if err != nil {
				return err
			}
			snap := index.NewSnapshot(res.Posts, res.Warnings, time.Now())

			path := c.cfg.Build.IndexPath
			st, err := index.Open(index.OpenOptions{Path: path})
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer st.Close()
			if err := st.Rebuild(snap); err != nil {
				return fmt.Errorf("rebuild index: %w", err)
			}
			info, err := st.Info()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d posts, %d warnings -> %s\n",
				ui.AccentBold.Render("indexed"), info.Posts, len(snap.Warnings), path)
			return nil
		},
	}
}
