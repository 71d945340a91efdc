package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/pcgextras/internal/logger"
)

// settleDelay coalesces the burst of events editors emit for one save.
const settleDelay = 100 * time.Millisecond

// Run generates once and, when watching, again after every change to the
// level file until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Generate(); err != nil {
		return err
	}
	if !s.cfg.Scene.Watch {
		return nil
	}
	return s.watch(ctx)
}

func (s *Session) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so the directory is watched instead.
	path, err := filepath.Abs(s.cfg.Scene.Level)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	log := logger.Named("session")
	log.Info("watching level", zap.String("path", path))

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				settle = time.After(settleDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		case <-settle:
			settle = nil
			if err := s.reload(); err != nil {
				log.Error("reloading level", zap.Error(err))
				continue
			}
			if err := s.Generate(); err != nil {
				log.Error("generating", zap.Error(err))
			}
		}
	}
}
