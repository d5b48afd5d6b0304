package serve

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// hub fans dev events out to connected SSE clients. Slow clients miss
// messages instead of blocking the sender.
type hub struct {
	mu     sync.Mutex
	conns  map[chan string]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{conns: make(map[chan string]struct{})}
}

func (h *hub) subscribe() (chan string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan string, 8)
	h.conns[ch] = struct{}{}
	return ch, true
}

func (h *hub) unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[ch]; ok {
		delete(h.conns, ch)
		close(ch)
	}
}

func (h *hub) broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.conns {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.conns {
		delete(h.conns, ch)
		close(ch)
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (s *Server) handleEvents(c echo.Context) error {
	ch, ok := s.hub.subscribe()
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "shutting down")
	}
	defer s.hub.unsubscribe(ch)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	fmt.Fprint(res, "data: hello\n\n")
	res.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fmt.Fprintf(res, "data: %s\n\n", msg)
			res.Flush()
		}
	}
}

// startWatch watches every directory under the content root. A burst of
// changes collapses into one reload after the debounce interval.
func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w
		if err = s.watchTree(s.cfg.Content.Dir); err != nil {
			return
		}
		go s.watchLoop(ctx)
	})
	return err
}

func (s *Server) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return s.watcher.Add(path)
		}
		return nil
	})
}

func (s *Server) watchLoop(ctx context.Context) {
	delay := s.cfg.Serve.Debounce
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	s.log.Info("watching for content changes", zap.String("root", s.cfg.Content.Dir))
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				// new post directories need their own watch
				if err := s.watchTree(ev.Name); err != nil {
					s.log.Debug("watch add skipped", zap.String("path", ev.Name), zap.Error(err))
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(delay)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", zap.Error(err))
		case <-debounce.C:
			rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := s.reload(rctx); err != nil {
				s.log.Error("reload failed", zap.Error(err))
			} else {
				s.log.Info("content reloaded")
			}
			cancel()
		}
	}
}
