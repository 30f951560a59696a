package docs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	log "github.com/go-pkgz/lgr"
)

// StartWatcher watches the workspace and drops cached renderings of files changed on disk.
// New directories are picked up as they appear. The watcher stops when ctx is canceled.
// The returned channel is closed once the watcher has stopped.
func (s *Service) StartWatcher(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := s.watchTree(watcher, s.root); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	log.Printf("[INFO] watching workspace %s for changes", s.root)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				log.Printf("[INFO] workspace watcher stopped")
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				s.handleEvent(watcher, event)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[WARN] workspace watcher error: %v", err)
			}
		}
	}()

	return done, nil
}

func (s *Service) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	log.Printf("[DEBUG] workspace change %s", event)
	s.Invalidate(event.Name)

	if event.Op&fsnotify.Create == 0 {
		return
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if err := s.watchTree(watcher, event.Name); err != nil {
			log.Printf("[WARN] can't watch new directory %s: %v", event.Name, err)
		}
	}
}

// watchTree adds dir and all its non-hidden subdirectories to the watcher.
func (s *Service) watchTree(watcher *fsnotify.Watcher, dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != dir && errors.Is(err, fs.ErrNotExist) {
				return nil // removed while walking
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch workspace: %w", err)
	}
	return nil
}
