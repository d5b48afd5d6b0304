package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kyon/internal/index"
	"kyon/internal/paging"
	"kyon/internal/ui"
)

func (c *cli) searchCmd() *cobra.Command {
	var (
		f        filterFlags
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search titles, excerpts and tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.view(cmd.Context())
			if err != nil {
				return err
			}
			hits := v.SearchHits(index.Criteria{
				Query:    strings.Join(args, " "),
				Tags:     f.tags,
				From:     from,
				To:       to,
				Category: f.category,
			})
			p := paging.Paginate(hits, f.page, c.cfg.Paging.PerPage)

			w := cmd.OutOrStdout()
			if len(p.Items) == 0 {
				fmt.Fprintln(w, ui.Muted.Render("no matches"))
				return nil
			}
			t := ui.NewTable(3)
			for _, h := range p.Items {
				t.AddRow(
					ui.Muted.Render(strconv.Itoa(h.Score)),
					ui.Accent.Render(h.Post.Category+"/"+h.Post.Slug),
					h.Post.Title,
				)
			}
			fmt.Fprint(w, t.String())
			fmt.Fprint(w, ui.PageFooter(p))
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringVar(&from, "from", "", "earliest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "latest date, YYYY-MM-DD")
	return cmd
}
