package source

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	debouncer := NewDebouncer(50 * time.Millisecond)
	defer debouncer.Stop()

	var calls int32
	for i := 0; i < 5; i++ {
		debouncer.Trigger(func() {
			atomic.AddInt32(&calls, 1)
		})
	}

	time.Sleep(200 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncer_SeparateEvents(t *testing.T) {
	debouncer := NewDebouncer(20 * time.Millisecond)
	defer debouncer.Stop()

	var calls int32
	debouncer.Trigger(func() { atomic.AddInt32(&calls, 1) })
	time.Sleep(100 * time.Millisecond)
	debouncer.Trigger(func() { atomic.AddInt32(&calls, 1) })
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("callback ran %d times, want 2", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	debouncer := NewDebouncer(100 * time.Millisecond)

	var calls int32
	debouncer.Trigger(func() {
		atomic.AddInt32(&calls, 1)
	})
	debouncer.Stop()

	time.Sleep(250 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", got)
	}
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	tmpDir := t.TempDir()
	writeDMNFile(t, tmpDir, "dish.dmn", dishDMN)

	config := &WatcherConfig{
		Path:             tmpDir,
		DebounceInterval: 50 * time.Millisecond,
		Extensions:       []string{".dmn", ".xml"},
		SkipHidden:       true,
	}

	watcher, err := NewWatcher(config, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	reloaded := make(chan struct{}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- watcher.Watch(ctx, func() error {
			reloaded <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	waitForRunning(t, watcher)

	writeDMNFile(t, tmpDir, "dish.dmn", dishDMN+"\n")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback not invoked within 5s of file change")
	}

	if err := watcher.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if err := <-watchDone; err != nil {
		t.Errorf("Watch() returned error: %v", err)
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	tmpDir := t.TempDir()

	config := &WatcherConfig{
		Path:             tmpDir,
		DebounceInterval: 30 * time.Millisecond,
		Extensions:       []string{".dmn"},
		SkipHidden:       true,
	}

	watcher, err := NewWatcher(config, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = watcher.Watch(ctx, func() error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}()
	waitForRunning(t, watcher)

	writeDMNFile(t, tmpDir, "notes.txt", "not a decision")
	writeDMNFile(t, tmpDir, ".hidden.dmn", dishDMN)

	time.Sleep(300 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("reload ran %d times for ignored files, want 0", got)
	}

	_ = watcher.Stop()
}

func TestWatcher_FailedReloadKeepsWatching(t *testing.T) {
	tmpDir := t.TempDir()

	config := &WatcherConfig{
		Path:             tmpDir,
		DebounceInterval: 30 * time.Millisecond,
		Extensions:       []string{".dmn"},
		SkipHidden:       true,
	}

	watcher, err := NewWatcher(config, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	reloads := make(chan struct{}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = watcher.Watch(ctx, func() error {
			reloads <- struct{}{}
			return context.DeadlineExceeded // any error
		})
	}()
	waitForRunning(t, watcher)

	writeDMNFile(t, tmpDir, "first.dmn", dishDMN)
	select {
	case <-reloads:
	case <-time.After(5 * time.Second):
		t.Fatal("first reload not invoked")
	}

	// The failed reload must not kill the watch loop.
	writeDMNFile(t, tmpDir, "second.dmn", dishDMN)
	select {
	case <-reloads:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher stopped after a failed reload")
	}

	_ = watcher.Stop()
}

func TestWatcher_DoubleWatchRejected(t *testing.T) {
	tmpDir := t.TempDir()

	config := DefaultWatcherConfig()
	config.Path = tmpDir

	watcher, err := NewWatcher(config, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = watcher.Watch(ctx, func() error { return nil })
	}()
	waitForRunning(t, watcher)

	if err := watcher.Watch(ctx, func() error { return nil }); err == nil {
		t.Error("second Watch() should fail while the first is running")
	}

	_ = watcher.Stop()
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	watcher, err := NewWatcher(DefaultWatcherConfig(), nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() on idle watcher failed: %v", err)
	}
}

// waitForRunning blocks until the watcher loop is active, then pauses long
// enough for the watch registrations to land.
func waitForRunning(t *testing.T, w *Watcher) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.IsRunning() {
			time.Sleep(150 * time.Millisecond)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("watcher did not start within 2s")
}
