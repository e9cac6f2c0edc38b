// FILE: lixenwraith/topl/watch.go
package topl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultMaxSubscribers = 100 // Prevent resource exhaustion

// WatchOptions configures file watching behavior
type WatchOptions struct {
	// PollInterval for file stat checks (minimum 100ms)
	PollInterval time.Duration

	// Debounce duration to avoid rapid re-resolution
	Debounce time.Duration

	// MaxSubscribers limits concurrent subscriber channels
	MaxSubscribers int

	// ReloadTimeout for reload + re-resolution operations
	ReloadTimeout time.Duration
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval:   DefaultPollInterval,
		Debounce:       DefaultDebounce,
		MaxSubscribers: DefaultMaxSubscribers,
		ReloadTimeout:  DefaultReloadTimeout,
	}
}

// Watcher re-resolves a configuration file whenever it changes on disk
// and broadcasts the freshly resolved *Config to subscribers. Watching
// is poll-based (mod time + size), with debouncing to coalesce editor
// write bursts.
type Watcher struct {
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	opts             WatchOptions
	resolveOpts      Options
	filePath         string
	params           map[string]string
	lastModTime      time.Time
	lastSize         int64
	watching         atomic.Bool
	reloadInProgress atomic.Bool
	subscribers      map[int64]chan *Config
	subscriberID     atomic.Int64
	debounceTimer    *time.Timer
	current          *Config
	lastErr          error
}

// WatchFile resolves path once, then starts watching it. The params map
// is captured for every re-resolution; it must not be mutated afterward.
// A circular reference in the initial file is not fatal: the partial
// result is kept and the condition is observable through Err.
func WatchFile(path string, params map[string]string, opts WatchOptions) (*Watcher, error) {
	return WatchFileWithOptions(path, params, opts, DefaultOptions())
}

// WatchFileWithOptions is WatchFile with an explicit resolution pass cap.
func WatchFileWithOptions(path string, params map[string]string, opts WatchOptions, resolveOpts Options) (*Watcher, error) {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.MaxSubscribers <= 0 {
		opts.MaxSubscribers = DefaultMaxSubscribers
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}

	data, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, resolveErr := ResolveWithOptions(data, params, resolveOpts)
	if resolveErr != nil && !errors.Is(resolveErr, ErrCircularReference) {
		return nil, resolveErr
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		ctx:         ctx,
		cancel:      cancel,
		opts:        opts,
		resolveOpts: resolveOpts,
		filePath:    path,
		params:      params,
		subscribers: make(map[int64]chan *Config),
		current:     cfg,
		lastErr:     resolveErr,
	}

	if info, err := os.Stat(path); err == nil {
		w.lastModTime = info.ModTime()
		w.lastSize = info.Size()
	}

	go w.watchLoop()
	return w, nil
}

// Config returns the most recently resolved configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Err returns the error from the most recent resolution, if any. A
// wrapped ErrCircularReference here means the current Config is partial.
func (w *Watcher) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastErr
}

// Subscribe returns a channel that receives each newly resolved Config.
// The channel is buffered; slow consumers miss intermediate updates
// rather than blocking the watcher. Returns a closed channel once the
// subscriber limit is reached.
func (w *Watcher) Subscribe() <-chan *Config {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.subscribers) >= w.opts.MaxSubscribers {
		ch := make(chan *Config)
		close(ch)
		return ch
	}

	ch := make(chan *Config, 10)
	id := w.subscriberID.Add(1)
	w.subscribers[id] = ch

	// Cleanup goroutine
	go func() {
		<-w.ctx.Done()
		w.mu.Lock()
		delete(w.subscribers, id)
		close(ch)
		w.mu.Unlock()
	}()

	return ch
}

// SubscriberCount returns the number of active subscriber channels.
func (w *Watcher) SubscriberCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subscribers)
}

// IsWatching reports whether the watch loop is running.
func (w *Watcher) IsWatching() bool {
	return w.watching.Load()
}

// Stop terminates the watcher and closes all subscriber channels.
func (w *Watcher) Stop() {
	w.cancel()

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.mu.Unlock()

	// Wait for watch loop to exit with timeout
	deadline := time.Now().Add(ShutdownTimeout)
	for w.watching.Load() && time.Now().Before(deadline) {
		time.Sleep(SpinWaitInterval)
	}
}

// watchLoop is the main file watching loop
func (w *Watcher) watchLoop() {
	if !w.watching.CompareAndSwap(false, true) {
		return // Already watching
	}
	defer w.watching.Store(false)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.checkAndReload()
		}
	}
}

// checkAndReload checks if the file changed and schedules a debounced reload
func (w *Watcher) checkAndReload() {
	info, err := os.Stat(w.filePath)
	if err != nil {
		// Deleted or unreadable file: keep the last good Config.
		return
	}

	if info.ModTime().Equal(w.lastModTime) && info.Size() == w.lastSize {
		return
	}

	w.lastModTime = info.ModTime()
	w.lastSize = info.Size()

	// Debounce rapid changes
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, w.performReload)
	w.mu.Unlock()
}

// performReload reloads and re-resolves the configuration file
func (w *Watcher) performReload() {
	// Prevent concurrent reloads
	if !w.reloadInProgress.CompareAndSwap(false, true) {
		return
	}
	defer w.reloadInProgress.Store(false)

	ctx, cancel := context.WithTimeout(w.ctx, w.opts.ReloadTimeout)
	defer cancel()

	type result struct {
		cfg *Config
		err error
	}
	done := make(chan result, 1)
	go func() {
		data, err := LoadFile(w.filePath)
		if err != nil {
			done <- result{nil, err}
			return
		}
		cfg, err := ResolveWithOptions(data, w.params, w.resolveOpts)
		done <- result{cfg, err}
	}()

	select {
	case res := <-done:
		if res.cfg == nil {
			// Parse or read failure: record it, keep the last good Config.
			w.mu.Lock()
			w.lastErr = res.err
			w.mu.Unlock()
			return
		}
		w.mu.Lock()
		w.current = res.cfg
		w.lastErr = res.err
		w.mu.Unlock()
		w.notifySubscribers(res.cfg)

	case <-ctx.Done():
		w.mu.Lock()
		w.lastErr = fmt.Errorf("reload of '%s' timed out", w.filePath)
		w.mu.Unlock()
	}
}

// notifySubscribers sends the new Config to all subscriber channels
func (w *Watcher) notifySubscribers(cfg *Config) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ch := range w.subscribers {
		select {
		case ch <- cfg:
		default:
			// Channel full, subscriber misses this update
		}
	}
}
