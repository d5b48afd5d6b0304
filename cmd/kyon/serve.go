package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kyon/internal/index"
	"kyon/internal/serve"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr      string
		dev       bool
		fromIndex bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API, feeds and assets over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if dev {
				cfg.Serve.Dev = true
			}

			s := serve.New(serve.Options{Config: cfg, Logger: c.log})
			defer s.Close()

			if fromIndex {
				snap, err := loadIndex(cfg.Build.IndexPath)
				if err != nil {
					return err
				}
				s.Catalog().Seed(snap)
				c.log.Info("catalog seeded from index",
					zap.String("path", cfg.Build.IndexPath),
					zap.Int("posts", len(snap.Posts)),
				)
			}
			return s.ListenAndServe(cmd.Context(), cfg.Serve.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default serve.addr)")
	cmd.Flags().BoolVar(&dev, "dev", false, "development mode: no cache, drafts visible, live reload events")
	cmd.Flags().BoolVar(&fromIndex, "from-index", false, "seed the catalog from the bbolt index instead of scanning")
	return cmd
}

func loadIndex(path string) (*index.Snapshot, error) {
	st, err := index.Open(index.OpenOptions{Path: path, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer st.Close()
	return st.Load()
}
