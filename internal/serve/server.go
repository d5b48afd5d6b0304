package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"kyon/internal/app"
	"kyon/internal/domain/config"
	"kyon/internal/feed"
	"kyon/internal/index"
	"kyon/internal/ingest"
	"kyon/internal/logger"
	"kyon/internal/render"
)

type Options struct {
	Config config.Config
	Logger *zap.Logger
	Now    func() time.Time
	// Scan replaces the directory scan, mostly for tests.
	Scan   index.ScanFunc
}

// Server is the HTTP query surface over the content catalog.
type Server struct {
	cfg      config.Config
	log      *zap.Logger
	now      func() time.Time
	catalog  *index.Catalog
	compiler *app.CompileService
	echo     *echo.Echo
	hub      *hub

	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(opt Options) *Server {
	cfg := opt.Config
	log := logger.OrNop(opt.Logger).Named("serve")
	now := opt.Now
	if now == nil {
		now = time.Now
	}

	scan := opt.Scan
	if scan == nil {
		scan = index.ScanDir(ingest.Options{
			Root:    cfg.Content.Dir,
			Strict:  cfg.Content.Strict,
			Workers: cfg.Build.Workers,
			Now:     opt.Now,
			Logger:  log,
		})
	}

	s := &Server{
		cfg: cfg,
		log: log,
		now: now,
		catalog: index.NewCatalog(index.CatalogOptions{
			Scan:          scan,
			NoCache:       cfg.Serve.Dev,
			IncludeDrafts: cfg.DraftsVisible(),
			Now:           opt.Now,
			Logger:        log,
		}),
		compiler: app.NewCompileService(render.Options{
			BasePath:         cfg.Site.BasePath,
			SiteURL:          cfg.Site.SiteURL,
			HighlightStyle:   cfg.Render.HighlightStyle,
			AutolinkHeadings: cfg.Render.AutolinkHeadings,
		}, false, log),
		hub: newHub(),
	}
	s.echo = s.newEcho()
	return s
}

func (s *Server) Catalog() *index.Catalog { return s.catalog }

func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogMethod:  true,
			LogError:   true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				fields := []zap.Field{
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Duration("latency", v.Latency),
				}
				if v.Error != nil {
					s.log.Debug("request failed", append(fields, zap.Error(v.Error))...)
					return nil
				}
				s.log.Debug("request", fields...)
				return nil
			},
		}),
		middleware.RecoverWithConfig(middleware.RecoverConfig{
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				s.log.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
				return err
			},
		}),
		middleware.GzipWithConfig(middleware.GzipConfig{
			Skipper: func(c echo.Context) bool {
				return c.Path() == s.cfg.Site.BasePath+"/dev/events"
			},
		}),
	)

	g := e.Group(s.cfg.Site.BasePath)
	g.GET("/api/posts", s.handlePosts)
	g.GET("/api/posts/:category/:slug", s.handlePost)
	g.GET("/api/categories", s.handleCategories)
	g.GET("/api/categories/:category", s.handleCategory)
	g.GET("/api/tags", s.handleTags)
	g.GET("/api/tags/:tag", s.handleTag)
	g.GET("/api/search", s.handleSearch)
	g.GET("/rss.xml", s.handleRSS)
	g.GET("/sitemap.xml", s.handleSitemap)
	g.GET("/search.json", s.handleSearchIndex)
	g.GET("/content/:category/:dir/*", s.handleAsset)
	if s.cfg.Serve.Dev {
		g.GET("/dev/events", s.handleEvents)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// ListenAndServe primes the catalog, starts the watcher when configured and
// serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if _, err := s.catalog.Snapshot(ctx); err != nil {
		return fmt.Errorf("serve: initial scan: %w", err)
	}
	if s.cfg.Serve.Watch {
		if err := s.startWatch(ctx); err != nil {
			return fmt.Errorf("serve: watch: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		s.hub.close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("listening",
		zap.String("addr", addr),
		zap.Bool("dev", s.cfg.Serve.Dev),
		zap.Bool("drafts", s.catalog.IncludeDrafts()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Close() error {
	s.hub.close()
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// reload rescans the content root, drops compiled documents and tells
// connected dev clients to refresh.
func (s *Server) reload(ctx context.Context) error {
	if _, err := s.catalog.Refresh(ctx); err != nil {
		return err
	}
	s.compiler.Clear()
	s.hub.broadcast("reload")
	return nil
}

func (s *Server) site() feed.Site {
	return feed.Site{
		Title:       s.cfg.Site.Title,
		Description: s.cfg.Site.Description,
		URL:         s.cfg.Site.SiteURL,
		BasePath:    s.cfg.Site.BasePath,
		Language:    s.cfg.Site.Language,
	}
}
