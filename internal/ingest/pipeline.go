package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kyon/internal/domain/content"
	domainerr "kyon/internal/domain/errors"
	"kyon/internal/logger"
)

type Warning struct {
	Path string `json:"path"`
	Msg  string `json:"msg"`
}

type Options struct {
	Root string
	// Strict fails the scan on the first document that would be skipped.
	Strict  bool
	Workers int
	Now     func() time.Time
	Logger  *zap.Logger
}

type Result struct {
	Posts    []content.PostMeta
	Warnings []Warning
}

type docResult struct {
	path  string
	meta  content.PostMeta
	warns []Warning
	err   error
	skip  bool
}

// Scan reads every content directory under opt.Root. Documents with
// malformed frontmatter are left out and reported as warnings; the scan
// itself only fails on I/O errors outside a single document, cancellation,
// or in strict mode.
func Scan(ctx context.Context, opt Options) (Result, error) {
	log := logger.OrNop(opt.Logger)
	now := time.Now
	if opt.Now != nil {
		now = opt.Now
	}
	scanTime := now()

	dirs, err := DiscoverSource(opt.Root)
	if err != nil {
		return Result{}, fmt.Errorf("ingest: discover %s: %w", opt.Root, err)
	}

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]docResult, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range dirs {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = scanOne(src, scanTime)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var out Result
	bySlug := make(map[string]string, len(dirs))
	for _, r := range results {
		out.Warnings = append(out.Warnings, r.warns...)
		if r.err != nil {
			if opt.Strict {
				return Result{}, r.err
			}
			out.Warnings = append(out.Warnings, Warning{Path: r.path, Msg: r.err.Error()})
			continue
		}
		if r.skip {
			continue
		}
		key := r.meta.Category + "/" + r.meta.Slug
		if prev, dup := bySlug[key]; dup {
			out.Warnings = append(out.Warnings, Warning{
				Path: r.meta.SourcePath,
				Msg:  "slug " + r.meta.Slug + " already used by " + prev,
			})
		} else {
			bySlug[key] = r.meta.ID
		}
		out.Posts = append(out.Posts, r.meta)
	}

	for _, w := range out.Warnings {
		log.Warn("document warning", zap.String("path", w.Path), zap.String("reason", w.Msg))
	}
	log.Debug("scan complete",
		zap.String("root", opt.Root),
		zap.Int("posts", len(out.Posts)),
		zap.Int("warnings", len(out.Warnings)),
	)
	return out, nil
}

func scanOne(src SourceDir, now time.Time) docResult {
	raw, err := os.ReadFile(src.IndexPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// removed between discovery and read
			return docResult{skip: true}
		}
		return docResult{path: src.IndexPath, err: fmt.Errorf("read %s: %w", src.IndexPath, err)}
	}
	doc, err := ParseFrontmatter(raw)
	if err != nil {
		return docResult{
			path: src.IndexPath,
			err:  domainerr.Document(src.IndexPath, domainerr.ErrMalformedFrontmatter, err),
		}
	}
	meta, warns := BuildMeta(src, doc, now)
	return docResult{meta: meta, warns: warns}
}
