package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const debounceDuration = 100 * time.Millisecond

// ConfigWatcher reloads the YAML config file when it changes and hands the
// result to registered listeners. Only settings that are safe to change at
// runtime are acted on by listeners; the rest take effect on restart.
type ConfigWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *Config
	mu       sync.RWMutex
	onChange []func(*Config)
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewConfigWatcher watches cfg.ConfigFile. cfg is the baseline every reload
// is merged onto.
func NewConfigWatcher(cfg *Config, logger *zap.Logger) (*ConfigWatcher, error) {
	if cfg.ConfigFile == "" {
		return nil, fmt.Errorf("no config file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic saves (write + rename) are seen
	if err := watcher.Add(filepath.Dir(cfg.ConfigFile)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &ConfigWatcher{
		path:    cfg.ConfigFile,
		watcher: watcher,
		current: cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// OnChange registers a listener. Listeners run on the watcher goroutine.
func (w *ConfigWatcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Current returns the most recently loaded configuration
func (w *ConfigWatcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start begins watching for configuration changes
func (w *ConfigWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes
func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Configuration watcher stopped")
	})
}

func (w *ConfigWatcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDuration, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// reload re-reads the file on top of the current config. An invalid file
// keeps the current config.
func (w *ConfigWatcher) reload() {
	w.mu.RLock()
	next := *w.current
	w.mu.RUnlock()

	if err := next.MergeFile(w.path); err != nil {
		w.logger.Error("Failed to reload configuration", zap.Error(err))
		return
	}
	if err := next.Validate(); err != nil {
		w.logger.Error("Invalid configuration, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	previous := w.current
	w.current = &next
	listeners := append([]func(*Config){}, w.onChange...)
	w.mu.Unlock()

	if previous.LogLevel != next.LogLevel {
		w.logger.Info("Log level changed",
			zap.String("from", previous.LogLevel),
			zap.String("to", next.LogLevel),
		)
	}

	for _, fn := range listeners {
		fn(&next)
	}
}

// LogLevelListener applies the reloaded LOG_LEVEL to a running logger
func LogLevelListener(level zap.AtomicLevel) func(*Config) {
	return func(cfg *Config) {
		if parsed, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
			level.SetLevel(parsed)
		}
	}
}
