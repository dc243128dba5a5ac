package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for more changes before reloading
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc receives each successfully reloaded library
type ReloadFunc func(*Library)

// Watcher reloads an override directory when its files change
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *zap.Logger
	onReload ReloadFunc

	fsw  *fsnotify.Watcher
	hash string
}

// NewWatcher watches dir and every subdirectory below it
func NewWatcher(dir string, debounce time.Duration, logger *zap.Logger, onReload ReloadFunc) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		dir:      dir,
		debounce: debounce,
		logger:   logger.Named("library-watcher"),
		onReload: onReload,
		fsw:      fsw,
	}
	if err := w.addWatchesRecursive(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	if w.hash, err = hashDir(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.logger.Info("library watcher started", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("library change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
			return true
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".md", ".yaml", ".yml":
		return true
	}
	return false
}

func (w *Watcher) reload() {
	hash, err := hashDir(w.dir)
	if err != nil {
		w.logger.Warn("failed to hash library directory", zap.Error(err))
		return
	}
	if hash == w.hash {
		w.logger.Debug("library content unchanged")
		return
	}

	lib, err := LoadWithOverrides(w.dir)
	if err != nil {
		// Keep serving the previous library until the files are fixed
		w.logger.Warn("library reload failed", zap.Error(err))
		return
	}
	w.hash = hash
	w.logger.Info("library reloaded",
		zap.Int("clauses", len(lib.Clauses)),
		zap.Int("templates", len(lib.Templates)),
		zap.Int("drafts", len(lib.Drafts)))
	if w.onReload != nil {
		w.onReload(lib)
	}
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); strings.HasPrefix(base, ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// hashDir fingerprints every library file below dir
func hashDir(dir string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".yaml", ".yml":
		default:
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		h.Write([]byte(rel))
		h.Write([]byte{0})
		h.Write(content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", dir, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
