package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kyon/internal/index"
	"kyon/internal/paging"
	"kyon/internal/ui"
)

// filterFlags are the structural filters shared by list and search.
type filterFlags struct {
	category string
	tags     []string
	page     int
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.category, "category", "", "only posts in this category")
	fs.StringSliceVar(&f.tags, "tag", nil, "only posts with any of these tags")
	fs.IntVar(&f.page, "page", 1, "page number")
}

func (c *cli) listCmd() *cobra.Command {
	var (
		f         filterFlags
		fromIndex bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fromIndex {
				return c.listFromIndex(cmd, f)
			}
			v, err := c.view(cmd.Context())
			if err != nil {
				return err
			}
			posts := v.Search(index.Criteria{Category: f.category, Tags: f.tags})
			p := paging.Paginate(posts, f.page, c.cfg.Paging.PerPage)

			w := cmd.OutOrStdout()
			fmt.Fprint(w, ui.PostTable(p.Items))
			fmt.Fprint(w, ui.PageFooter(p))
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&fromIndex, "from-index", false, "read the bbolt index instead of scanning")
	return cmd
}

// listFromIndex pages through the stored index. The store matches one tag,
// so only the first --tag is used.
func (c *cli) listFromIndex(cmd *cobra.Command, f filterFlags) error {
	st, err := index.Open(index.OpenOptions{Path: c.cfg.Build.IndexPath, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer st.Close()

	opt := index.ListOptions{
		Category:      f.category,
		Page:          f.page,
		Size:          c.cfg.Paging.PerPage,
		IncludeDrafts: c.cfg.DraftsVisible(),
	}
	if len(f.tags) > 0 {
		opt.Tag = f.tags[0]
	}
	posts, err := st.List(opt)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), ui.PostTable(posts))
	return nil
}
