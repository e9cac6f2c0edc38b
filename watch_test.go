// FILE: lixenwraith/topl/watch_test.go
package topl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval:  MinPollInterval,
		Debounce:      50 * time.Millisecond,
		ReloadTimeout: 2 * time.Second,
	}
}

// TestWatchFileInitialState tests the initial resolve performed by WatchFile
func TestWatchFileInitialState(t *testing.T) {
	path := writeTempConfig(t, "watch.toml", `
name = "alpha"
greeting = "Hello {{name}} {{who}}"
`)

	w, err := WatchFile(path, map[string]string{"who": "there"}, fastWatchOptions())
	require.NoError(t, err)
	defer w.Stop()

	greeting, _ := w.Config().Get("greeting")
	assert.Equal(t, "Hello alpha there", greeting)
	assert.NoError(t, w.Err())

	require.Eventually(t, w.IsWatching, time.Second, 10*time.Millisecond)
}

// TestWatchFileMissing tests that a missing file fails fast
func TestWatchFileMissing(t *testing.T) {
	_, err := WatchFile("/nonexistent/watch.toml", nil, fastWatchOptions())
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

// TestWatchFileDetectsChange tests that edits are re-resolved and broadcast
func TestWatchFileDetectsChange(t *testing.T) {
	path := writeTempConfig(t, "watch.toml", `
name = "alpha"
greeting = "Hello {{name}}"
`)

	w, err := WatchFile(path, nil, fastWatchOptions())
	require.NoError(t, err)
	defer w.Stop()

	updates := w.Subscribe()
	require.Equal(t, 1, w.SubscriberCount())

	// Rewrite with a different length so size comparison always fires,
	// independent of filesystem mtime granularity.
	writeFileAt(t, path, `
name = "bravo-bravo"
greeting = "Hello {{name}}"
`)

	select {
	case cfg := <-updates:
		require.NotNil(t, cfg)
		greeting, _ := cfg.Get("greeting")
		assert.Equal(t, "Hello bravo-bravo", greeting)

		// Watcher state reflects the new resolution too.
		current, _ := w.Config().Get("greeting")
		assert.Equal(t, "Hello bravo-bravo", current)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for re-resolved config")
	}
}

// TestWatchFileKeepsLastGoodOnParseError tests reload failure handling
func TestWatchFileKeepsLastGoodOnParseError(t *testing.T) {
	path := writeTempConfig(t, "watch.toml", `name = "alpha"`)

	w, err := WatchFile(path, nil, fastWatchOptions())
	require.NoError(t, err)
	defer w.Stop()

	writeFileAt(t, path, `name = [broken and much longer than before`)

	// Give the watcher time to poll, debounce, and attempt the reload.
	require.Eventually(t, func() bool {
		return w.Err() != nil
	}, 5*time.Second, 20*time.Millisecond)

	name, _ := w.Config().Get("name")
	assert.Equal(t, "alpha", name)
}

// TestWatcherStop tests shutdown and subscriber channel closure
func TestWatcherStop(t *testing.T) {
	path := writeTempConfig(t, "watch.toml", `name = "alpha"`)

	w, err := WatchFile(path, nil, fastWatchOptions())
	require.NoError(t, err)

	updates := w.Subscribe()
	w.Stop()

	assert.False(t, w.IsWatching())

	// Subscriber channel is closed after Stop.
	require.Eventually(t, func() bool {
		select {
		case _, open := <-updates:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

// TestWatcherSubscriberLimit tests the bounded subscriber policy
func TestWatcherSubscriberLimit(t *testing.T) {
	path := writeTempConfig(t, "watch.toml", `name = "alpha"`)

	opts := fastWatchOptions()
	opts.MaxSubscribers = 1

	w, err := WatchFile(path, nil, opts)
	require.NoError(t, err)
	defer w.Stop()

	first := w.Subscribe()
	require.NotNil(t, first)

	// Over the limit: a closed channel, not a blocked watcher.
	second := w.Subscribe()
	_, open := <-second
	assert.False(t, open)
	assert.Equal(t, 1, w.SubscriberCount())
}

// TestWatchFileCircularInitial tests that an initial cycle is non-fatal
func TestWatchFileCircularInitial(t *testing.T) {
	path := writeTempConfig(t, "watch.toml", `
a = "{{b}}"
b = "{{a}}"
`)

	w, err := WatchFile(path, nil, fastWatchOptions())
	require.NoError(t, err)
	defer w.Stop()

	assert.ErrorIs(t, w.Err(), ErrCircularReference)
	require.NotNil(t, w.Config())
	assert.True(t, w.Config().HasUnresolved())
}
