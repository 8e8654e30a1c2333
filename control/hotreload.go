// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Config file watcher dispatching reload hooks.

package control

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/momentics/hioload-mpt/logger"
)

// ReloadHook receives the previous and the new configuration.
type ReloadHook func(prev, next *Config)

// Watcher re-decodes the configuration when its file changes and hands the
// result to registered hooks. An invalid file keeps the previous config.
type Watcher struct {
	v   *viper.Viper
	log logger.Logger

	mu      sync.Mutex
	current *Config
	hooks   []ReloadHook
}

// NewWatcher creates a watcher over v starting from cfg.
func NewWatcher(v *viper.Viper, cfg *Config, log logger.Logger) *Watcher {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Watcher{v: v, log: log, current: cfg}
}

// OnReload registers a hook. Hooks run synchronously, in registration order.
func (w *Watcher) OnReload(h ReloadHook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hooks = append(w.hooks, h)
}

// Current returns the last accepted configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Watch starts watching the config file read by Load. Viper keeps the
// watch goroutine for the rest of the process.
func (w *Watcher) Watch() {
	w.v.OnConfigChange(func(e fsnotify.Event) {
		w.log.Info("bridge config changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		_ = w.Reload()
	})
	w.v.WatchConfig()
}

// Reload decodes the current viper state and, when valid, dispatches it.
func (w *Watcher) Reload() error {
	next, err := decode(w.v)
	if err != nil {
		w.log.Warn("bridge config reload rejected", zap.Error(err))
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	prev := w.current
	w.current = next
	for _, h := range w.hooks {
		h(prev, next)
	}
	return nil
}
