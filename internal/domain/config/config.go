package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	domainerr "kyon/internal/domain/errors"
)

type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Build   BuildConfig   `yaml:"build"`
	Serve   ServeConfig   `yaml:"serve"`
	Render  RenderConfig  `yaml:"render"`
	Paging  PagingConfig  `yaml:"paging"`
	Log     LogConfig     `yaml:"log"`
}

type SiteConfig struct {
	Title       string `yaml:"title" env:"SITE_NAME"`
	SiteURL     string `yaml:"site_url" env:"SITE_URL"`
	BasePath    string `yaml:"base_path" env:"BASE_PATH"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	Language    string `yaml:"language"`
}

type ContentConfig struct {
	Dir           string `yaml:"dir" env:"KYON_CONTENT_DIR"`
	IncludeDrafts bool   `yaml:"include_drafts" env:"KYON_INCLUDE_DRAFTS"`
	// Strict turns skipped documents into scan/build failures.
	Strict bool `yaml:"strict" env:"KYON_STRICT"`
}

type BuildConfig struct {
	PublicDir string `yaml:"public_dir" env:"KYON_PUBLIC_DIR"`
	IndexPath string `yaml:"index_path" env:"KYON_INDEX_PATH"`
	Workers   int    `yaml:"workers" env:"KYON_WORKERS"`
}

type ServeConfig struct {
	Addr     string        `yaml:"addr" env:"KYON_ADDR"`
	Dev      bool          `yaml:"dev" env:"KYON_DEV"`
	Watch    bool          `yaml:"watch" env:"KYON_WATCH"`
	Debounce time.Duration `yaml:"debounce" env:"KYON_DEBOUNCE"`
}

type RenderConfig struct {
	HighlightStyle   string `yaml:"highlight_style"`
	AutolinkHeadings bool   `yaml:"autolink_headings"`
}

type PagingConfig struct {
	PerPage int `yaml:"per_page" env:"POSTS_PER_PAGE"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"KYON_LOG_LEVEL"`
	Format string `yaml:"format" env:"KYON_LOG_FORMAT"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Kyon",
			SiteURL:  "http://localhost:3000",
			Language: "en",
		},
		Content: ContentConfig{
			Dir: "public/content",
		},
		Build: BuildConfig{
			PublicDir: "out",
			IndexPath: ".kyon/index.db",
		},
		Serve: ServeConfig{
			Addr:     ":3000",
			Watch:    true,
			Debounce: 200 * time.Millisecond,
		},
		Render: RenderConfig{
			HighlightStyle:   "github",
			AutolinkHeadings: true,
		},
		Paging: PagingConfig{
			PerPage: 12,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DraftsVisible reports whether draft posts appear in public listings.
// Dev mode always shows them.
func (c Config) DraftsVisible() bool {
	return c.Content.IncludeDrafts || c.Serve.Dev
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}

	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	if bp := strings.TrimSpace(c.Site.BasePath); bp != "" {
		if !strings.HasPrefix(bp, "/") {
			ve.Add("site.base_path", "must start with '/'")
		}
		if strings.HasSuffix(bp, "/") {
			ve.Add("site.base_path", "must not end with '/'")
		}
	}

	if strings.TrimSpace(c.Content.Dir) == "" {
		ve.Add("content.dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.IndexPath) == "" {
		ve.Add("build.index_path", "must not be empty")
	}
	if c.Build.Workers < 0 {
		ve.Add("build.workers", "must not be negative")
	}
	if c.Serve.Debounce < 0 {
		ve.Add("serve.debounce", "must not be negative")
	}
	if c.Paging.PerPage < 1 {
		ve.Add("paging.per_page", "must be at least 1")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		ve.Add("log.level", "must be one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		ve.Add("log.format", "must be 'console' or 'json'")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ApplyEnv overlays environment variables on cfg. A nil environ reads the
// process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	var err error
	if environ == nil {
		err = env.Parse(cfg)
	} else {
		err = env.ParseWithOptions(cfg, env.Options{Environment: environ})
	}
	if err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return finish(cfg, data)
}

// LoadOrDefault behaves like Load but a missing file yields defaults plus
// environment overrides.
func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(cfg, nil)
		}
		return cfg, err
	}
	return finish(cfg, data)
}

func finish(cfg Config, data []byte) (Config, error) {
	// file values override defaults; absent keys keep them
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
	}
	if err := ApplyEnv(&cfg, nil); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
