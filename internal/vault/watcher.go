package vault

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const importDebounce = 200 * time.Millisecond

// Watch imports the inbox once, then watches it with fsnotify and re-imports
// after each burst of changes settles. It returns when ctx is cancelled.
func (v *Vault) Watch(ctx context.Context) error {
	if v.inbox == nil {
		return errors.New("vault: inbox not configured")
	}
	root := v.inbox.Root()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	v.log.Info("watcher: started", slog.String("root", root))
	v.importLogged(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(importDebounce)
			fire = timer.C
		} else {
			timer.Reset(importDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			v.log.Info("watcher: stopped")
			return nil

		case <-fire:
			v.importLogged(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						v.log.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			v.log.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (v *Vault) importLogged(ctx context.Context) {
	stats, err := v.ImportDir(ctx)
	if err != nil {
		v.log.Error("watcher: import failed", slog.String("error", err.Error()))
		return
	}
	if len(stats.Imported) > 0 || len(stats.Rejected) > 0 {
		v.log.Debug("watcher: import pass",
			slog.Int("imported", len(stats.Imported)),
			slog.Int("rejected", len(stats.Rejected)))
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// skipping hidden ones such as .rejected.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
