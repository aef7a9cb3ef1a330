package infrastructure

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce délai de calme avant de relancer un run
const DefaultDebounce = 2 * time.Second

// Trigger action lancée après une rafale de modifications
type Trigger func(ctx context.Context) error

// RawWatcher surveille les dossiers d'entrée et relance un run après chaque rafale
type RawWatcher struct {
	roots    []string
	debounce time.Duration
	trigger  Trigger
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	ignored  map[string]struct{}
}

// NewRawWatcher crée le watcher; les racines absentes sont ignorées jusqu'au prochain démarrage
func NewRawWatcher(roots []string, debounce time.Duration, trigger Trigger, logger *zap.Logger) (*RawWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &RawWatcher{
		roots:    roots,
		debounce: debounce,
		trigger:  trigger,
		logger:   logger,
		watcher:  w,
		ignored:  make(map[string]struct{}),
	}, nil
}

// Ignore exclut des noms de dossiers (sorties écrites par le run lui-même)
func (rw *RawWatcher) Ignore(names ...string) {
	for _, n := range names {
		rw.ignored[n] = struct{}{}
	}
}

// Run bloque jusqu'à l'annulation du contexte
func (rw *RawWatcher) Run(ctx context.Context) error {
	defer rw.watcher.Close()
	for _, root := range rw.roots {
		if err := rw.addTree(root); err != nil {
			return err
		}
	}

	var timer *time.Timer
	var fire <-chan time.Time
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-rw.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) || rw.isIgnored(event.Name) {
				continue
			}
			// les nouveaux dossiers (Week N, marque) doivent être surveillés aussi
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := rw.addTree(event.Name); err != nil {
						rw.logger.Warn("watch new dir failed", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}
			rw.logger.Debug("raw input changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			stopTimer()
			timer = time.NewTimer(rw.debounce)
			fire = timer.C

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return nil
			}
			rw.logger.Error("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := rw.trigger(ctx); err != nil {
				rw.logger.Error("triggered run failed", zap.Error(err))
			}
		}
	}
}

// addTree ajoute un dossier et tous ses sous-dossiers (fsnotify n'est pas récursif)
func (rw *RawWatcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if _, skip := rw.ignored[d.Name()]; skip {
			return filepath.SkipDir
		}
		return rw.watcher.Add(path)
	})
	if errors.Is(err, fs.ErrNotExist) {
		rw.logger.Warn("watch root not found", zap.String("path", root))
		return nil
	}
	return err
}

// isIgnored vérifie si le chemin est un dossier ignoré ou se trouve directement dedans
func (rw *RawWatcher) isIgnored(path string) bool {
	if _, ok := rw.ignored[filepath.Base(path)]; ok {
		return true
	}
	_, ok := rw.ignored[filepath.Base(filepath.Dir(path))]
	return ok
}

// relevant ignore les fichiers temporaires d'Excel et les écritures atomiques en cours
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	return !strings.HasPrefix(name, "~$") && !strings.HasPrefix(name, ".")
}
