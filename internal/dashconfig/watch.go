package dashconfig

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/wonny/snapboard/pkg/logger"
)

// Loader holds the current dashboard config and hot-reloads it from disk.
// A reload that fails to parse or validate keeps the previous config.
type Loader struct {
	path   string
	logger *logger.Logger

	mu       sync.RWMutex
	current  *Config
	hash     string
	onChange []func(*Config, string)
}

// NewLoader creates a Loader and performs the initial load
func NewLoader(path string, log *logger.Logger) (*Loader, error) {
	l := &Loader{path: path, logger: log.WithComponent("dashconfig")}
	if _, err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Config returns the current configuration and its hash
func (l *Loader) Config() (*Config, string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current, l.hash
}

// OnChange registers a callback invoked after every successful reload
func (l *Loader) OnChange(fn func(cfg *Config, hash string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Reload forces an immediate re-read of the config file.
// Callbacks run only when the hash changed.
func (l *Loader) Reload() (*Config, error) {
	cfg, _, err := Load(l.path)
	if err != nil {
		return nil, err
	}
	hash, err := Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash dashboard config: %w", err)
	}

	l.mu.Lock()
	changed := hash != l.hash
	l.current = cfg
	l.hash = hash
	callbacks := make([]func(*Config, string), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()

	if changed {
		for _, fn := range callbacks {
			fn(cfg, hash)
		}
	}
	return cfg, nil
}

// Watch hot-reloads the config on file changes until stop is called.
// The parent directory is watched so editors that replace the file are seen.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}

	target := filepath.Clean(l.path)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if _, err := l.Reload(); err != nil {
					l.logger.WithError(err).Warn("Dashboard config reload failed, keeping previous config")
					continue
				}
				_, hash := l.Config()
				l.logger.WithField("hash", hash).Info("Dashboard config reloaded")

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.WithError(err).Warn("Dashboard config watcher error")

			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}, nil
}
