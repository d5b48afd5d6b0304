package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kyon/internal/app"
	"kyon/internal/domain/content"
	"kyon/internal/index"
	"kyon/internal/ingest"
	"kyon/internal/render"
	"kyon/internal/ui"
)

func (c *cli) showCmd() *cobra.Command {
	var (
		width     int
		showTOC   bool
		fromIndex bool
	)
	cmd := &cobra.Command{
		Use:   "show <category> <slug>",
		Short: "Render one post in the terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.findPost(cmd, args[0], args[1], fromIndex)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", args[0], args[1], err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprint(w, ui.PostHeader(m))

			if showTOC {
				cs := app.NewCompileService(render.Options{
					BasePath: c.cfg.Site.BasePath,
					SiteURL:  c.cfg.Site.SiteURL,
				}, true, c.log)
				compiled, err := cs.Compile(m)
				if err != nil {
					return err
				}
				if len(compiled.TOC) > 0 {
					fmt.Fprintln(w)
					fmt.Fprint(w, ui.TOC(compiled.TOC))
				}
			}

			raw, err := os.ReadFile(m.SourcePath)
			if err != nil {
				return err
			}
			doc, err := ingest.ParseFrontmatter(raw)
			if err != nil {
				return err
			}
			out, err := ui.RenderMarkdown(doc.Content, width, c.color())
			if err != nil {
				return err
			}
			fmt.Fprint(w, out)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", ui.DefaultWidth, "word wrap width")
	cmd.Flags().BoolVar(&showTOC, "toc", true, "print the table of contents")
	cmd.Flags().BoolVar(&fromIndex, "from-index", false, "look the post up in the bbolt index instead of scanning")
	return cmd
}

func (c *cli) findPost(cmd *cobra.Command, category, ref string, fromIndex bool) (content.PostMeta, error) {
	if fromIndex {
		return c.postFromIndex(category, ref)
	}
	v, err := c.view(cmd.Context())
	if err != nil {
		return content.PostMeta{}, err
	}
	return v.BySlug(category, ref)
}

// postFromIndex resolves ref as a directory name first, then walks the
// category's stored posts for a matching slug.
func (c *cli) postFromIndex(category, ref string) (content.PostMeta, error) {
	st, err := index.Open(index.OpenOptions{Path: c.cfg.Build.IndexPath, ReadOnly: true})
	if err != nil {
		return content.PostMeta{}, fmt.Errorf("open index: %w", err)
	}
	defer st.Close()

	drafts := c.cfg.DraftsVisible()
	m, err := st.GetMeta(category + "/" + ref)
	if err == nil && (drafts || !m.Draft) {
		return m, nil
	}
	if err != nil && !errors.Is(err, index.ErrNotFound) {
		return content.PostMeta{}, err
	}

	for page := 1; ; page++ {
		posts, err := st.List(index.ListOptions{Category: category, Page: page, Size: 100, IncludeDrafts: drafts})
		if err != nil {
			return content.PostMeta{}, err
		}
		for _, p := range posts {
			if p.Slug == ref {
				return p, nil
			}
		}
		if len(posts) < 100 {
			return content.PostMeta{}, index.ErrNotFound
		}
	}
}
