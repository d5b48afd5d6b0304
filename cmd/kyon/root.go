package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kyon/internal/domain/config"
	"kyon/internal/index"
	"kyon/internal/ingest"
	"kyon/internal/logger"
)

const defaultConfigFile = "kyon.yaml"

// cli carries state shared by every subcommand once the root has loaded
// configuration.
type cli struct {
	cfgFile  string
	logLevel string
	noColor  bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "kyon",
		Short:         "Content engine for Markdown and MDX posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default "+defaultConfigFile+" when present)")
	pf.StringVar(&c.logLevel, "log-level", "", "override log.level")
	pf.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.serveCmd(),
		c.buildCmd(),
		c.indexCmd(),
		c.listCmd(),
		c.searchCmd(),
		c.showCmd(),
	)
	return root
}

func (c *cli) load() error {
	var (
		cfg config.Config
		err error
	)
	if c.cfgFile != "" {
		cfg, err = config.Load(c.cfgFile)
	} else {
		cfg, err = config.LoadOrDefault(defaultConfigFile)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	c.cfg, c.log = cfg, log
	return nil
}

func (c *cli) color() bool {
	return !c.noColor && os.Getenv("NO_COLOR") == ""
}

// view scans the content root and returns the publicly visible posts.
func (c *cli) view(ctx context.Context) (index.View, error) {
	cat := index.NewCatalog(index.CatalogOptions{
		Scan: index.ScanDir(ingest.Options{
			Root:    c.cfg.Content.Dir,
			Strict:  c.cfg.Content.Strict,
			Workers: c.cfg.Build.Workers,
			Logger:  c.log,
		}),
		IncludeDrafts: c.cfg.DraftsVisible(),
		Logger:        c.log,
	})
	return cat.View(ctx)
}
