package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerr "kyon/internal/domain/errors"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateCollectsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Site.SiteURL = "ftp://example.com"
	cfg.Site.BasePath = "blog/"
	cfg.Paging.PerPage = 0
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrInvalid))

	var ve domainerr.ValidationError
	require.True(t, errors.As(err, &ve))
	fields := make([]string, 0, len(ve.Items))
	for _, it := range ve.Items {
		fields = append(fields, it.Field)
	}
	assert.Contains(t, fields, "site.site_url")
	assert.Contains(t, fields, "site.base_path")
	assert.Contains(t, fields, "paging.per_page")
	assert.Contains(t, fields, "log.format")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	yml := `
site:
  title: Notes
  site_url: https://notes.example.com
  base_path: /kyon
serve:
  debounce: 500ms
paging:
  per_page: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Notes", cfg.Site.Title)
	assert.Equal(t, "/kyon", cfg.Site.BasePath)
	assert.Equal(t, 5, cfg.Paging.PerPage)
	assert.Equal(t, 500*time.Millisecond, cfg.Serve.Debounce)
	// untouched keys keep defaults
	assert.Equal(t, "public/content", cfg.Content.Dir)
	assert.True(t, cfg.Render.AutolinkHeadings)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Kyon", cfg.Site.Title)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, map[string]string{
		"SITE_URL":       "https://kyon.dev",
		"POSTS_PER_PAGE": "20",
		"KYON_DEV":       "true",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://kyon.dev", cfg.Site.SiteURL)
	assert.Equal(t, 20, cfg.Paging.PerPage)
	assert.True(t, cfg.Serve.Dev)
	assert.True(t, cfg.DraftsVisible())
	// unset variables leave values alone
	assert.Equal(t, "Kyon", cfg.Site.Title)
}

func TestApplyEnvBadValue(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, map[string]string{"POSTS_PER_PAGE": "many"})
	assert.Error(t, err)
}
