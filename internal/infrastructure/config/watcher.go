package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/listwise/backend/internal/infrastructure/log"
)

// Watcher 配置文件监听器
// 监听配置文件所在目录，文件变更（含编辑器的原子替换）后防抖重载
type Watcher struct {
	cfg     *Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	debounce   *time.Timer
	debounceMu sync.Mutex

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// debounceDelay 防抖延迟
const debounceDelay = 500 * time.Millisecond

// NewWatcher 创建配置监听器
func NewWatcher(cfg *Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		cfg:     cfg,
		watcher: fsWatcher,
		logger:  log.NewModuleLogger("config", "watcher"),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start 启动监听
func (w *Watcher) Start() error {
	path := ConfigFilePath()
	if path == "" {
		w.logger.Warn("No config file path, hot reload disabled")
		return nil
	}

	// 监听目录而不是文件本身，避免 rename 后丢失 watch
	if err := w.watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop(filepath.Base(path))

	w.logger.Info("Config watcher started", "path", path)
	return nil
}

// loop 事件循环
func (w *Watcher) loop(fileName string) {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "error", err)

		case <-w.stopCh:
			return
		}
	}
}

// scheduleReload 防抖后执行重载
func (w *Watcher) scheduleReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, func() {
		if err := w.cfg.Reload(); err != nil {
			w.logger.Warn("Failed to reload config", "error", err)
			return
		}
		w.logger.Info("Config reloaded")
	})
}

// Stop 停止监听
func (w *Watcher) Stop() error {
	close(w.stopCh)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
