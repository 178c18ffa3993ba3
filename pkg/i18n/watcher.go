package i18n

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a catalog directory when its files change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	catalog  *Catalog
	dir      string
	logger   zerolog.Logger
	debounce time.Duration
	onReload func(int, error)

	mu     sync.Mutex
	timer  *time.Timer
	stopCh chan struct{}
	once   sync.Once
}

// NewWatcher starts watching dir and reloading it into catalog. A reload
// replaces the catalog contents and a failed one leaves them untouched.
// onReload, if set, is called after every reload with the number of keys
// loaded.
func NewWatcher(catalog *Catalog, dir string, logger zerolog.Logger, onReload func(int, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		catalog:  catalog,
		dir:      dir,
		logger:   logger.With().Str("component", "catalog-watcher").Logger(),
		debounce: 200 * time.Millisecond,
		onReload: onReload,
		stopCh:   make(chan struct{}),
	}

	go w.run()

	return w, nil
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isCatalogFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debug().
					Str("file", filepath.Base(event.Name)).
					Str("op", event.Op.String()).
					Msg("Catalog change detected")
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Catalog watcher error")

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	n, err := ReloadDir(w.catalog, w.dir)
	if err != nil {
		w.logger.Warn().Err(err).Str("dir", w.dir).Msg("Catalog reload failed")
	} else {
		w.logger.Info().Int("keys", n).Msg("Catalog reloaded")
	}
	if w.onReload != nil {
		w.onReload(n, err)
	}
}
