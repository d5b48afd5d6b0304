package index

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"kyon/internal/ingest"
	"kyon/internal/logger"
	"kyon/internal/metrics"
)

type ScanFunc func(ctx context.Context) (ingest.Result, error)

// ScanDir scans a content root with ingest.Scan.
func ScanDir(opt ingest.Options) ScanFunc {
	return func(ctx context.Context) (ingest.Result, error) {
		return ingest.Scan(ctx, opt)
	}
}

type CatalogOptions struct {
	Scan  ScanFunc
	Cache *Cache
	// NoCache rescans on every Snapshot call (local development).
	NoCache       bool
	IncludeDrafts bool
	Now           func() time.Time
	Logger        *zap.Logger
}

// Catalog is the process-wide post index: a scan function plus the cache in
// front of it. Concurrent misses share one scan.
type Catalog struct {
	scan    ScanFunc
	cache   *Cache
	noCache bool
	drafts  bool
	now     func() time.Time
	log     *zap.Logger
	group   singleflight.Group
}

func NewCatalog(opt CatalogOptions) *Catalog {
	c := &Catalog{
		scan:    opt.Scan,
		cache:   opt.Cache,
		noCache: opt.NoCache,
		drafts:  opt.IncludeDrafts,
		now:     opt.Now,
		log:     logger.OrNop(opt.Logger).Named("index"),
	}
	if c.cache == nil {
		c.cache = NewCache()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Catalog) IncludeDrafts() bool { return c.drafts }

// Snapshot returns the cached snapshot, scanning on a miss.
func (c *Catalog) Snapshot(ctx context.Context) (*Snapshot, error) {
	if !c.noCache {
		if s, ok := c.cache.Get(); ok {
			return s, nil
		}
	}
	v, err, _ := c.group.Do("scan", func() (any, error) {
		if !c.noCache {
			if s, ok := c.cache.Get(); ok {
				return s, nil
			}
		}
		return c.build(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// View is Snapshot followed by Snapshot.View with the catalog's draft
// visibility.
func (c *Catalog) View(ctx context.Context) (View, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return View{}, err
	}
	return s.View(c.drafts), nil
}

// Refresh rescans unconditionally. The previous snapshot keeps serving
// readers until the new one replaces it; on error it stays in place.
func (c *Catalog) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.build(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (c *Catalog) Invalidate() {
	c.cache.Invalidate()
	c.log.Debug("cache invalidated")
}

// Seed installs a snapshot loaded from elsewhere, e.g. the bbolt store.
func (c *Catalog) Seed(s *Snapshot) {
	c.cache.Set(s)
	metrics.IndexedPosts.Set(float64(len(s.Posts)))
}

func (c *Catalog) build(ctx context.Context) (*Snapshot, error) {
	ticket := c.cache.Ticket()
	start := time.Now()
	res, err := c.scan(ctx)
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ScansTotal.WithLabelValues("error").Inc()
		c.log.Error("scan failed", zap.Error(err))
		return nil, err
	}
	metrics.ScansTotal.WithLabelValues("ok").Inc()

	snap := NewSnapshot(res.Posts, res.Warnings, c.now())
	if !c.noCache && !c.cache.SetFrom(snap, ticket) {
		c.log.Debug("newer snapshot already cached, keeping it")
	}
	metrics.IndexedPosts.Set(float64(len(snap.Posts)))
	metrics.ScanWarnings.Set(float64(len(snap.Warnings)))
	c.log.Info("snapshot built",
		zap.Int("posts", len(snap.Posts)),
		zap.Int("warnings", len(snap.Warnings)),
		zap.Duration("took", time.Since(start)),
	)
	return snap, nil
}
