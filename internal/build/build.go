package build

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kyon/internal/app"
	"kyon/internal/domain/config"
	"kyon/internal/domain/content"
	"kyon/internal/domain/site"
	"kyon/internal/feed"
	"kyon/internal/index"
	"kyon/internal/ingest"
	"kyon/internal/logger"
	"kyon/internal/paging"
	"kyon/internal/render"
)

// Builder exports the content root as static JSON, feeds and assets.
type Builder struct {
	Cfg    config.Config
	Logger *zap.Logger
	Now    func() time.Time
}

type Result struct {
	Posts    int
	Routes   int
	Assets   int
	Warnings []ingest.Warning
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	log := logger.OrNop(b.Logger).Named("build")
	cfg := b.Cfg

	scanned, err := ingest.Scan(ctx, ingest.Options{
		Root:    cfg.Content.Dir,
		Strict:  cfg.Content.Strict,
		Workers: cfg.Build.Workers,
		Now:     b.Now,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	drafts := cfg.DraftsVisible()
	view := index.NewSnapshot(scanned.Posts, scanned.Warnings, b.now()).View(drafts)

	compiler := app.NewCompileService(render.Options{
		BasePath:         cfg.Site.BasePath,
		SiteURL:          cfg.Site.SiteURL,
		HighlightStyle:   cfg.Render.HighlightStyle,
		AutolinkHeadings: cfg.Render.AutolinkHeadings,
	}, true, log)
	compiled, failed, err := b.compileAll(ctx, compiler, view.All())
	if err != nil {
		return nil, err
	}

	// posts that failed to compile drop out of every listing
	warnings := make([]ingest.Warning, 0, len(scanned.Warnings)+len(failed))
	warnings = append(append(warnings, scanned.Warnings...), failed...)
	bad := failedIDs(failed, scanned.Posts)
	kept := make([]content.PostMeta, 0, len(scanned.Posts))
	for _, p := range scanned.Posts {
		if _, skip := bad[p.ID]; !skip {
			kept = append(kept, p)
		}
	}
	snap := index.NewSnapshot(kept, warnings, b.now())
	view = snap.View(drafts)

	if err := b.persist(snap); err != nil {
		return nil, err
	}

	outDir := cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	rb := app.RouteBuilder{PerPage: cfg.Paging.PerPage}
	routes := rb.All(view)
	for _, r := range routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.writeRoute(outDir, r, view, snap, compiled); err != nil {
			return nil, fmt.Errorf("write %s: %w", r, err)
		}
	}

	assets, err := b.copyAssets(outDir, view.All())
	if err != nil {
		return nil, fmt.Errorf("copy assets: %w", err)
	}
	if err := b.writeHighlightCSS(outDir); err != nil {
		return nil, fmt.Errorf("highlight css: %w", err)
	}

	for _, w := range failed {
		log.Warn("post skipped", zap.String("path", w.Path), zap.String("reason", w.Msg))
	}
	log.Info("build complete",
		zap.String("out", outDir),
		zap.Int("posts", len(compiled)),
		zap.Int("routes", len(routes)),
		zap.Int("assets", assets),
		zap.Int("warnings", len(warnings)),
	)
	return &Result{
		Posts:    len(compiled),
		Routes:   len(routes),
		Assets:   assets,
		Warnings: warnings,
	}, nil
}

func failedIDs(failed []ingest.Warning, posts []content.PostMeta) map[string]struct{} {
	paths := make(map[string]struct{}, len(failed))
	for _, w := range failed {
		paths[w.Path] = struct{}{}
	}
	bad := make(map[string]struct{}, len(failed))
	for _, p := range posts {
		if _, ok := paths[p.SourcePath]; ok {
			bad[p.ID] = struct{}{}
		}
	}
	return bad
}

// compileAll compiles posts in parallel. A failing post becomes a warning,
// or aborts the build in strict mode.
func (b *Builder) compileAll(ctx context.Context, cs *app.CompileService, posts []content.PostMeta) (map[string]*app.Compiled, []ingest.Warning, error) {
	var (
		mu     sync.Mutex
		out    = make(map[string]*app.Compiled, len(posts))
		failed []ingest.Warning
	)
	g, gctx := errgroup.WithContext(ctx)
	if w := b.Cfg.Build.Workers; w > 0 {
		g.SetLimit(w)
	}
	for _, p := range posts {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := cs.Compile(p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if b.Cfg.Content.Strict {
					return err
				}
				failed = append(failed, ingest.Warning{Path: p.SourcePath, Msg: err.Error()})
				return nil
			}
			out[p.ID] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return out, failed, nil
}

func (b *Builder) persist(snap *index.Snapshot) error {
	if b.Cfg.Build.IndexPath == "" {
		return nil
	}
	st, err := index.Open(index.OpenOptions{Path: b.Cfg.Build.IndexPath})
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()
	if err := st.Rebuild(snap); err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}
	return nil
}

func (b *Builder) site() feed.Site {
	return feed.Site{
		Title:       b.Cfg.Site.Title,
		Description: b.Cfg.Site.Description,
		URL:         b.Cfg.Site.SiteURL,
		BasePath:    b.Cfg.Site.BasePath,
		Language:    b.Cfg.Site.Language,
	}
}

func (b *Builder) writeRoute(outDir string, r site.Route, v index.View, snap *index.Snapshot, compiled map[string]*app.Compiled) error {
	switch r.Kind {
	case site.RoutePost:
		m, err := v.ByID(r.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", r.ID, err)
		}
		c, ok := compiled[m.ID]
		if !ok {
			return fmt.Errorf("%s was not compiled", m.ID)
		}
		return writeJSON(outDir, r.OutPath, app.NewPostDocument(m, c, v.Related(m, 3)))

	case site.RouteBlog, site.RouteCategory, site.RouteTag:
		return writeJSON(outDir, r.OutPath, app.ListingPage{
			Kind: string(r.Kind),
			Key:  r.Key,
			Page: paging.Paginate(app.Listing(v, r), r.Page, b.Cfg.Paging.PerPage),
		})

	case site.RouteIndex:
		warnings := snap.Warnings
		if warnings == nil {
			warnings = []ingest.Warning{}
		}
		return writeJSON(outDir, r.OutPath, app.SiteIndex{
			Title:      b.Cfg.Site.Title,
			URL:        b.Cfg.Site.SiteURL,
			BasePath:   b.Cfg.Site.BasePath,
			BuiltAt:    snap.BuiltAt,
			Posts:      v.All(),
			Categories: v.Categories(),
			Tags:       v.TagStats(),
			Warnings:   warnings,
		})

	case site.RouteSearch:
		return writeWith(outDir, r.OutPath, func(w io.Writer) error {
			return feed.WriteSearchIndex(w, b.site(), v.All())
		})
	case site.RouteRSS:
		return writeWith(outDir, r.OutPath, func(w io.Writer) error {
			return feed.WriteRSS(w, b.site(), v.All(), b.now())
		})
	case site.RouteSitemap:
		return writeWith(outDir, r.OutPath, func(w io.Writer) error {
			return feed.WriteSitemap(w, b.site(), v.All())
		})
	}
	return fmt.Errorf("unknown route kind %q", r.Kind)
}

// copyAssets mirrors each public post's asset files to
// content/<category>/<dirName>/ under outDir.
func (b *Builder) copyAssets(outDir string, posts []content.PostMeta) (int, error) {
	n := 0
	for _, p := range posts {
		refs, err := ingest.ListAssets(b.Cfg.Content.Dir, b.Cfg.Site.BasePath, p.Category, p.DirName)
		if err != nil {
			return n, err
		}
		for _, ref := range refs {
			src := filepath.Join(b.Cfg.Content.Dir, p.Category, p.DirName, ref.Filename)
			data, err := os.ReadFile(src)
			if err != nil {
				return n, err
			}
			if err := writeFile(outDir, ref.Path, data); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func (b *Builder) writeHighlightCSS(outDir string) error {
	style := strings.TrimSpace(b.Cfg.Render.HighlightStyle)
	if style == "" {
		return nil
	}
	return writeWith(outDir, "assets/highlight.css", func(w io.Writer) error {
		return render.WriteHighlightCSS(w, style)
	})
}

func writeJSON(root, rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(root, rel, append(data, '\n'))
}

func writeWith(root, rel string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	return writeFile(root, rel, buf.Bytes())
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}
