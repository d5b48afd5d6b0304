package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kyon/internal/build"
	"kyon/internal/ui"
)

func (c *cli) buildCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export posts, listings, feeds and assets as static files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			if out != "" {
				cfg.Build.PublicDir = out
			}
			res, err := (&build.Builder{Cfg: cfg, Logger: c.log}).Run(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %d posts, %d routes, %d assets -> %s\n",
				ui.AccentBold.Render("built"), res.Posts, res.Routes, res.Assets, cfg.Build.PublicDir)
			for _, warn := range res.Warnings {
				fmt.Fprintf(w, "%s %s: %s\n", ui.Muted.Render("warn"), warn.Path, warn.Msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default build.public_dir)")
	return cmd
}
