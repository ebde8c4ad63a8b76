// Package monitor implements real-time protection: it watches directories
// for file-system activity, scans new and changed files, and optionally
// quarantines what the scan flags. Event intake is debounced and the queue
// is bounded; under sustained pressure the newest events are dropped rather
// than growing memory without limit.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/LinkyJayy/Sentry-Antivirus/internal/config"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/metrics"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/scanner"
	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

// Status of the realtime monitor.
type Status string

const (
	StatusDisabled Status = "disabled"
	StatusEnabled  Status = "enabled"
	StatusPaused   Status = "paused"
	StatusError    Status = "error"
)

var (
	// ErrWatchUnavailable means the platform watcher could not be created.
	ErrWatchUnavailable = errors.New("monitor: filesystem watcher unavailable")

	// ErrNotRunning means the operation needs a started monitor.
	ErrNotRunning = errors.New("monitor: not running")
)

const (
	// settleDelay gives writers time to finish before the file is scanned.
	settleDelay = 200 * time.Millisecond

	// debounceLimit caps the debounce set; when exceeded it is cleared
	// wholesale rather than tracked with per-entry expiry.
	debounceLimit = 1000

	// stopTimeout bounds how long Stop waits for the worker goroutines.
	stopTimeout = 5 * time.Second
)

// highRiskExtensions are scanned on sight regardless of other filters.
var highRiskExtensions = map[string]bool{
	".exe": true, ".dll": true, ".bat": true, ".cmd": true, ".ps1": true,
	".vbs": true, ".js": true, ".msi": true, ".scr": true, ".pif": true,
	".com": true, ".hta": true, ".jar": true,
}

// FileScanner scans a single file. Implementations never fail; read errors
// surface as clean results carrying a description.
type FileScanner interface {
	ScanFile(path string) models.ScanResult
}

// Quarantiner isolates a detected file.
type Quarantiner interface {
	Isolate(path string, det models.Detection) (models.QuarantinedItem, error)
}

// queuedEvent is one file waiting to be scanned.
type queuedEvent struct {
	path      string
	eventType models.EventType
}

// Monitor watches directories and scans files as they appear or change.
type Monitor struct {
	scanner FileScanner
	store   Quarantiner
	logger  *zap.Logger
	metrics metrics.Collector

	defaults  []string
	queueSize int
	retention int
	limiter   *rate.Limiter
	settle    time.Duration

	autoQuarantine atomic.Bool

	mu           sync.Mutex
	status       Status
	watcher      *fsnotify.Watcher
	watchedRoots map[string]bool
	queue        chan queuedEvent
	cancel       context.CancelFunc
	watcherDone  chan struct{}
	consumerDone chan struct{}
	events       []models.ProtectionEvent
	eventSubs    []chan models.ProtectionEvent
	threatSubs   []chan models.ScanResult

	recentMu sync.Mutex
	recent   map[string]bool
}

// New creates a monitor. store may be nil when auto-quarantine will never be
// enabled.
func New(cfg *config.Config, fileScanner FileScanner, store Quarantiner, logger *zap.Logger, collector metrics.Collector) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.Nop{}
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	retention := cfg.EventRetention
	if retention <= 0 {
		retention = 1000
	}

	limit := rate.Inf
	burst := 1
	if cfg.ScanRate > 0 {
		limit = rate.Limit(cfg.ScanRate)
		if burst = int(cfg.ScanRate); burst < 1 {
			burst = 1
		}
	}

	m := &Monitor{
		scanner:      fileScanner,
		store:        store,
		logger:       logger,
		metrics:      collector,
		defaults:     cfg.WatchPaths,
		queueSize:    queueSize,
		retention:    retention,
		limiter:      rate.NewLimiter(limit, burst),
		settle:       settleDelay,
		status:       StatusDisabled,
		watchedRoots: make(map[string]bool),
		recent:       make(map[string]bool),
	}
	m.autoQuarantine.Store(cfg.AutoQuarantine)
	return m
}

// Start begins watching. An empty paths slice falls back to the configured
// watch paths; roots that do not exist are skipped with a warning. Starting
// an already-enabled monitor is a no-op.
func (m *Monitor) Start(paths []string) error {
	m.mu.Lock()

	if m.status == StatusEnabled || m.status == StatusPaused {
		m.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.status = StatusError
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrWatchUnavailable, err)
	}

	if len(paths) == 0 {
		paths = m.defaults
	}

	watched := 0
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("watch path unavailable", zap.String("path", path), zap.Error(err))
			continue
		}
		if added := m.addRecursive(watcher, path); added > 0 {
			m.watchedRoots[path] = true
			watched++
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.watcher = watcher
	m.cancel = cancel
	m.queue = make(chan queuedEvent, m.queueSize)
	m.watcherDone = make(chan struct{})
	m.consumerDone = make(chan struct{})
	m.status = StatusEnabled

	go m.eventLoop(watcher, m.watcherDone)
	go m.consume(ctx, m.queue, m.consumerDone)
	m.mu.Unlock()

	m.recordEvent(models.ProtectionEvent{
		Type:      models.EventProtectionStarted,
		Timestamp: time.Now(),
		Action:    fmt.Sprintf("Monitoring %d locations", watched),
	})
	m.logger.Info("realtime protection started", zap.Int("watched_roots", watched))
	return nil
}

// Stop halts watching and waits up to stopTimeout for the worker goroutines.
// Stopping a disabled monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.status == StatusDisabled {
		m.mu.Unlock()
		return
	}
	watcher := m.watcher
	cancel := m.cancel
	watcherDone := m.watcherDone
	consumerDone := m.consumerDone
	m.watcher = nil
	m.cancel = nil
	m.watchedRoots = make(map[string]bool)
	m.status = StatusDisabled
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		watcher.Close()
	}

	for _, done := range []chan struct{}{watcherDone, consumerDone} {
		if done == nil {
			continue
		}
		select {
		case <-done:
		case <-time.After(stopTimeout):
			m.logger.Warn("monitor goroutine did not stop in time")
		}
	}

	m.recentMu.Lock()
	m.recent = make(map[string]bool)
	m.recentMu.Unlock()

	m.recordEvent(models.ProtectionEvent{
		Type:      models.EventProtectionStopped,
		Timestamp: time.Now(),
		Action:    "Real-time protection disabled",
	})
	m.logger.Info("realtime protection stopped")
}

// Pause keeps the watcher running but drops incoming events at intake.
func (m *Monitor) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusEnabled {
		m.status = StatusPaused
		m.logger.Info("realtime protection paused")
	}
}

// Resume re-enables event intake after Pause.
func (m *Monitor) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusPaused {
		m.status = StatusEnabled
		m.logger.Info("realtime protection resumed")
	}
}

// Status returns the current monitor state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SetAutoQuarantine toggles automatic isolation of detected threats.
func (m *Monitor) SetAutoQuarantine(enabled bool) {
	m.autoQuarantine.Store(enabled)
	m.logger.Info("auto-quarantine changed", zap.Bool("enabled", enabled))
}

// AddWatchPath starts watching another directory tree on a running monitor.
func (m *Monitor) AddWatchPath(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher == nil {
		return ErrNotRunning
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to stat watch path: %w", err)
	}
	if m.watchedRoots[path] {
		return nil
	}

	if added := m.addRecursive(m.watcher, path); added == 0 {
		return fmt.Errorf("failed to watch %s", path)
	}
	m.watchedRoots[path] = true
	m.logger.Info("watch path added", zap.String("path", path))
	return nil
}

// RemoveWatchPath stops watching a directory tree.
func (m *Monitor) RemoveWatchPath(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher == nil {
		return ErrNotRunning
	}
	if !m.watchedRoots[path] {
		return fmt.Errorf("path %s is not watched", path)
	}

	prefix := path + string(os.PathSeparator)
	for _, watched := range m.watcher.WatchList() {
		if watched == path || strings.HasPrefix(watched, prefix) {
			if err := m.watcher.Remove(watched); err != nil {
				m.logger.Debug("failed to unwatch directory",
					zap.String("path", watched), zap.Error(err))
			}
		}
	}
	delete(m.watchedRoots, path)
	m.logger.Info("watch path removed", zap.String("path", path))
	return nil
}

// WatchedPaths returns the watched roots, sorted.
func (m *Monitor) WatchedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.watchedRoots))
	for path := range m.watchedRoots {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// RecentEvents returns up to count of the latest protection events, oldest
// first.
func (m *Monitor) RecentEvents(count int) []models.ProtectionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if count <= 0 || count > len(m.events) {
		count = len(m.events)
	}
	out := make([]models.ProtectionEvent, count)
	copy(out, m.events[len(m.events)-count:])
	return out
}

// SubscribeEvents returns a channel receiving every protection event. Slow
// receivers miss events instead of blocking the monitor.
func (m *Monitor) SubscribeEvents() <-chan models.ProtectionEvent {
	ch := make(chan models.ProtectionEvent, 64)
	m.mu.Lock()
	m.eventSubs = append(m.eventSubs, ch)
	m.mu.Unlock()
	return ch
}

// SubscribeThreats returns a channel receiving each detection the monitor
// makes, before any quarantine action.
func (m *Monitor) SubscribeThreats() <-chan models.ScanResult {
	ch := make(chan models.ScanResult, 16)
	m.mu.Lock()
	m.threatSubs = append(m.threatSubs, ch)
	m.mu.Unlock()
	return ch
}

// addRecursive watches root and every directory below it. Callers hold m.mu.
func (m *Monitor) addRecursive(watcher *fsnotify.Watcher, root string) int {
	added := 0
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if werr := watcher.Add(path); werr != nil {
			m.logger.Debug("cannot watch directory", zap.String("path", path), zap.Error(werr))
			return nil
		}
		added++
		return nil
	})
	return added
}

// eventLoop drains the fsnotify channels until the watcher is closed.
func (m *Monitor) eventLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			m.handleFSEvent(watcher, ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// handleFSEvent translates one fsnotify event into a queued scan. Newly
// created directories are added to the watch; fsnotify does not descend on
// its own.
func (m *Monitor) handleFSEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) {
	var eventType models.EventType
	switch {
	case ev.Op&fsnotify.Create != 0:
		eventType = models.EventFileCreated
	case ev.Op&fsnotify.Write != 0:
		eventType = models.EventFileModified
	case ev.Op&fsnotify.Rename != 0:
		eventType = models.EventFileMoved
	default:
		return
	}

	if eventType == models.EventFileCreated {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			m.mu.Lock()
			if m.watcher == watcher {
				m.addRecursive(watcher, ev.Name)
			}
			m.mu.Unlock()
			return
		}
	}

	m.queueFile(ev.Name, eventType)
}

// queueFile applies the intake filters and enqueues the file for scanning.
// When the queue is full the event is dropped: realtime protection degrades
// under pressure instead of buffering without bound.
func (m *Monitor) queueFile(path string, eventType models.EventType) {
	m.mu.Lock()
	enabled := m.status == StatusEnabled
	queue := m.queue
	m.mu.Unlock()
	if !enabled || queue == nil {
		return
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !highRiskExtensions[ext] && !scanner.HasScannableExtension(path) {
		return
	}

	m.recentMu.Lock()
	if m.recent[path] {
		m.recentMu.Unlock()
		return
	}
	if len(m.recent) > debounceLimit {
		m.recent = make(map[string]bool)
	}
	m.recent[path] = true
	m.recentMu.Unlock()

	select {
	case queue <- queuedEvent{path: path, eventType: eventType}:
		m.metrics.GaugeSet(metrics.MonitorQueueDepth.Name, float64(len(queue)))
	default:
		m.metrics.CounterInc(metrics.MonitorDroppedTotal.Name)
		m.logger.Warn("monitor queue full, dropping event", zap.String("path", path))
		m.forgetRecent(path)
	}
}

// consume processes queued events one at a time, rate-limited.
func (m *Monitor) consume(ctx context.Context, queue chan queuedEvent, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case qe := <-queue:
			m.metrics.GaugeSet(metrics.MonitorQueueDepth.Name, float64(len(queue)))
			if err := m.limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case <-time.After(m.settle):
			case <-ctx.Done():
				return
			}
			m.processEvent(qe)
		}
	}
}

// processEvent scans one file and records what happened.
func (m *Monitor) processEvent(qe queuedEvent) {
	defer m.forgetRecent(qe.path)

	// The file may be gone by the time we get to it (temp files, renames).
	if _, err := os.Stat(qe.path); err != nil {
		return
	}

	result := m.scanner.ScanFile(qe.path)

	action := models.ActionScanned
	event := models.ProtectionEvent{
		Type:      qe.eventType,
		FilePath:  qe.path,
		Timestamp: time.Now(),
	}

	switch {
	case result.IsThreat():
		m.notifyThreat(result)
		action = models.ActionThreatDetected
		if m.autoQuarantine.Load() && m.store != nil {
			det := models.Detection{
				Level:       result.Level,
				Name:        result.ThreatName,
				Description: result.Description,
				Method:      result.Method,
			}
			if _, err := m.store.Isolate(qe.path, det); err != nil {
				m.logger.Warn("auto-quarantine failed",
					zap.String("path", qe.path), zap.Error(err))
			} else {
				action = models.ActionQuarantined
			}
		}
		event.Result = &result
		m.logger.Warn("realtime threat detected",
			zap.String("path", qe.path),
			zap.String("threat", result.ThreatName),
			zap.String("level", result.Level.String()),
			zap.String("action", action))
	case strings.HasPrefix(result.Description, "scan failed"):
		action = models.ActionError
	}

	event.Action = action
	m.recordEvent(event)
	m.metrics.CounterInc(metrics.MonitorEventsTotal.Name, "type", string(qe.eventType))
}

// recordEvent appends to the bounded event log and fans out to subscribers.
func (m *Monitor) recordEvent(ev models.ProtectionEvent) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	if len(m.events) > m.retention {
		trimmed := make([]models.ProtectionEvent, m.retention)
		copy(trimmed, m.events[len(m.events)-m.retention:])
		m.events = trimmed
	}
	subs := make([]chan models.ProtectionEvent, len(m.eventSubs))
	copy(subs, m.eventSubs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (m *Monitor) notifyThreat(result models.ScanResult) {
	m.mu.Lock()
	subs := make([]chan models.ScanResult, len(m.threatSubs))
	copy(subs, m.threatSubs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- result:
		default:
		}
	}
}

func (m *Monitor) forgetRecent(path string) {
	m.recentMu.Lock()
	delete(m.recent, path)
	m.recentMu.Unlock()
}
