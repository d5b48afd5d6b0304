package app

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	dbuild "kyon/internal/domain/build"
	"kyon/internal/domain/content"
	domainerr "kyon/internal/domain/errors"
	"kyon/internal/logger"
	"kyon/internal/metrics"
	"kyon/internal/render"
)

// Compiled is a compile result plus the fingerprint it was cached under.
type Compiled struct {
	*render.Result
	Fingerprint dbuild.Fingerprint
}

// CompileService reads and compiles post sources, memoizing results by
// fingerprint. Safe for concurrent use.
type CompileService struct {
	compiler    *render.Compiler
	optionsHash string
	noCache     bool
	log         *zap.Logger

	mu    sync.RWMutex
	cache map[string]*Compiled
}

func NewCompileService(opt render.Options, noCache bool, log *zap.Logger) *CompileService {
	return &CompileService{
		compiler:    render.NewCompiler(opt),
		optionsHash: dbuild.HashString(fmt.Sprintf("%+v", opt)),
		noCache:     noCache,
		log:         logger.OrNop(log).Named("compile"),
		cache:       make(map[string]*Compiled),
	}
}

// Compile reads meta.SourcePath and compiles it. Errors are
// *domainerr.DocumentError with Kind ErrNotFound, ErrMalformedFrontmatter
// or ErrMalformedBody.
func (s *CompileService) Compile(meta content.PostMeta) (*Compiled, error) {
	raw, err := os.ReadFile(meta.SourcePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domainerr.Document(meta.SourcePath, domainerr.ErrNotFound, err)
		}
		return nil, fmt.Errorf("read %s: %w", meta.SourcePath, err)
	}

	fp := dbuild.Fingerprint{
		ContentHash: dbuild.HashBytes(raw),
		AssetHash:   dbuild.HashString(meta.Category + "/" + meta.DirName),
		OptionsHash: s.optionsHash,
	}
	fp.ComputeRenderHash()

	if !s.noCache {
		s.mu.RLock()
		hit, ok := s.cache[fp.RenderHash]
		s.mu.RUnlock()
		if ok {
			metrics.CompileCacheHits.Inc()
			return hit, nil
		}
	}

	res, err := s.compiler.Compile(raw, meta.Kind, meta.AssetBase())
	if err != nil {
		metrics.CompilesTotal.WithLabelValues(string(meta.Kind), "error").Inc()
		kind := domainerr.ErrMalformedBody
		if errors.Is(err, domainerr.ErrMalformedFrontmatter) {
			kind = domainerr.ErrMalformedFrontmatter
		}
		s.log.Warn("compile failed", zap.String("path", meta.SourcePath), zap.Error(err))
		return nil, domainerr.Document(meta.SourcePath, kind, err)
	}
	metrics.CompilesTotal.WithLabelValues(string(meta.Kind), "ok").Inc()

	out := &Compiled{Result: res, Fingerprint: fp}
	if !s.noCache {
		s.mu.Lock()
		s.cache[fp.RenderHash] = out
		s.mu.Unlock()
	}
	return out, nil
}

// Clear empties the compile cache.
func (s *CompileService) Clear() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

func (s *CompileService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
