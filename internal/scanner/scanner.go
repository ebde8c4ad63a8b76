// Package scanner orchestrates batch scans: it enumerates eligible files,
// fans them out to a worker pool and aggregates results into a progress
// snapshot that callers can poll or subscribe to.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LinkyJayy/Sentry-Antivirus/internal/config"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/engine"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/metrics"
	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

// Scanner runs batch scans over directory trees. One scan runs at a time;
// a second Scan call while one is in flight is rejected. ScanFile is
// independent of batch state and may be called at any time.
type Scanner struct {
	config  *config.Config
	engine  *engine.Engine
	logger  *zap.Logger
	metrics metrics.Collector

	exclude map[string]bool
	maxSize int64

	mu          sync.Mutex
	progress    models.ScanProgress
	results     []models.ScanResult
	subscribers []chan models.ScanProgress
	cancelScan  context.CancelFunc

	pauseMu   sync.Mutex
	pauseCond *sync.Cond
	paused    bool

	running   atomic.Bool
	cancelled atomic.Bool
}

// New creates a scanner around the given detection engine.
func New(cfg *config.Config, eng *engine.Engine, logger *zap.Logger, collector metrics.Collector) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.Nop{}
	}

	exclude := make(map[string]bool, len(skipDirectories)+len(cfg.Exclude))
	for name := range skipDirectories {
		exclude[name] = true
	}
	for _, name := range cfg.Exclude {
		exclude[name] = true
	}

	s := &Scanner{
		config:   cfg,
		engine:   eng,
		logger:   logger,
		metrics:  collector,
		exclude:  exclude,
		maxSize:  cfg.MaxFileSizeBytes(),
		progress: models.ScanProgress{Status: models.StatusIdle},
	}
	s.pauseCond = sync.NewCond(&s.pauseMu)
	return s
}

// Scan walks the given roots and scans every eligible file. Roots that do
// not exist are skipped with a warning. onThreat, when non-nil, is invoked
// for each detection as it is found. The returned slice holds one result per
// scanned file, clean files included; after cancellation it holds whatever
// was collected up to that point.
func (s *Scanner) Scan(ctx context.Context, roots []string, recursive bool, onThreat func(models.ScanResult)) []models.ScanResult {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("scan already in progress")
		return nil
	}
	defer s.running.Store(false)

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.cancelled.Store(false)
	s.pauseMu.Lock()
	s.paused = false
	s.pauseMu.Unlock()

	s.mu.Lock()
	s.cancelScan = cancel
	s.results = nil
	s.progress = models.ScanProgress{
		SessionID: uuid.NewString(),
		Status:    models.StatusCounting,
		StartTime: time.Now(),
	}
	snapshot := s.progress
	s.mu.Unlock()
	s.publish(snapshot)

	s.logger.Info("starting scan",
		zap.String("session_id", snapshot.SessionID),
		zap.Strings("roots", roots),
		zap.Bool("recursive", recursive))

	total := s.countFiles(scanCtx, roots, recursive)

	s.mu.Lock()
	s.progress.TotalFiles = total
	s.progress.Status = models.StatusScanning
	snapshot = s.progress
	s.mu.Unlock()
	s.publish(snapshot)

	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	fileChan := make(chan string, workers*2)
	resultsChan := make(chan models.ScanResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.worker(scanCtx, &wg, fileChan, resultsChan)
	}

	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go s.collect(&collectWg, resultsChan, onThreat)

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			s.logger.Warn("scan root unavailable", zap.String("path", root), zap.Error(err))
			continue
		}
		err := s.enumerate(scanCtx, root, recursive, func(path string, _ int64) error {
			select {
			case <-scanCtx.Done():
				return scanCtx.Err()
			case fileChan <- path:
				return nil
			}
		})
		if err != nil {
			break
		}
	}

	close(fileChan)
	wg.Wait()
	close(resultsChan)
	collectWg.Wait()

	s.mu.Lock()
	if s.cancelled.Load() || scanCtx.Err() != nil {
		s.progress.Status = models.StatusCancelled
	} else {
		s.progress.Status = models.StatusCompleted
	}
	s.progress.EndTime = time.Now()
	s.progress.CurrentFile = ""
	snapshot = s.progress
	results := make([]models.ScanResult, len(s.results))
	copy(results, s.results)
	s.mu.Unlock()
	s.publish(snapshot)

	s.metrics.HistogramObserve(metrics.ScanDuration.Name, snapshot.Elapsed().Seconds())
	s.logger.Info("scan finished",
		zap.String("session_id", snapshot.SessionID),
		zap.String("status", string(snapshot.Status)),
		zap.Int("scanned_files", snapshot.ScannedFiles),
		zap.Int("threats_found", snapshot.ThreatsFound),
		zap.Duration("elapsed", snapshot.Elapsed()))

	return results
}

// QuickScan scans common threat drop locations (downloads, desktop, temp)
// without descending into subdirectories.
func (s *Scanner) QuickScan(ctx context.Context, onThreat func(models.ScanResult)) []models.ScanResult {
	return s.Scan(ctx, QuickScanPaths(), false, onThreat)
}

// FullScan walks every filesystem root.
func (s *Scanner) FullScan(ctx context.Context, onThreat func(models.ScanResult)) []models.ScanResult {
	return s.Scan(ctx, FullScanRoots(), true, onThreat)
}

// ScanFile scans a single file synchronously, outside any batch session.
// Read failures yield a clean result whose description records the error.
func (s *Scanner) ScanFile(path string) models.ScanResult {
	return s.scanPath(path)
}

// Cancel stops the running scan. Workers finish their current file; results
// collected so far are kept and the final status is cancelled.
func (s *Scanner) Cancel() {
	s.cancelled.Store(true)

	s.mu.Lock()
	cancel := s.cancelScan
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	// Release workers parked at the pause gate so they can observe the
	// cancellation.
	s.pauseCond.Broadcast()
	s.logger.Info("scan cancelled")
}

// Pause parks the workers between files. Files already being scanned finish
// first.
func (s *Scanner) Pause() {
	s.pauseMu.Lock()
	s.paused = true
	s.pauseMu.Unlock()

	s.mu.Lock()
	if s.progress.Status == models.StatusScanning {
		s.progress.Status = models.StatusPaused
	}
	snapshot := s.progress
	s.mu.Unlock()
	s.publish(snapshot)
	s.logger.Info("scan paused")
}

// Resume releases paused workers. Calling Resume when not paused is a no-op.
func (s *Scanner) Resume() {
	s.pauseMu.Lock()
	wasPaused := s.paused
	s.paused = false
	s.pauseMu.Unlock()
	s.pauseCond.Broadcast()

	if !wasPaused {
		return
	}

	s.mu.Lock()
	if s.progress.Status == models.StatusPaused {
		s.progress.Status = models.StatusScanning
	}
	snapshot := s.progress
	s.mu.Unlock()
	s.publish(snapshot)
	s.logger.Info("scan resumed")
}

// Progress returns a snapshot of the current scan state.
func (s *Scanner) Progress() models.ScanProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Results returns a copy of all results from the most recent scan.
func (s *Scanner) Results() []models.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ScanResult, len(s.results))
	copy(out, s.results)
	return out
}

// Threats returns only the results classified above clean.
func (s *Scanner) Threats() []models.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ScanResult
	for _, r := range s.results {
		if r.IsThreat() {
			out = append(out, r)
		}
	}
	return out
}

// SubscribeProgress returns a channel receiving progress snapshots for the
// life of the scanner. Slow receivers miss intermediate snapshots instead of
// stalling the scan.
func (s *Scanner) SubscribeProgress() <-chan models.ScanProgress {
	ch := make(chan models.ScanProgress, 16)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

// publish fans a snapshot out to subscribers without blocking.
func (s *Scanner) publish(p models.ScanProgress) {
	s.mu.Lock()
	subs := make([]chan models.ScanProgress, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- p:
		default:
		}
	}
}

// worker scans files from fileChan until it closes or the scan is cancelled.
func (s *Scanner) worker(ctx context.Context, wg *sync.WaitGroup, fileChan <-chan string, resultsChan chan<- models.ScanResult) {
	defer wg.Done()

	for path := range fileChan {
		select {
		case <-ctx.Done():
			return
		default:
			s.waitIfPaused()
			if s.cancelled.Load() {
				return
			}
			resultsChan <- s.scanPath(path)
		}
	}
}

// waitIfPaused blocks while the scan is paused. Cancellation releases the
// gate.
func (s *Scanner) waitIfPaused() {
	s.pauseMu.Lock()
	for s.paused && !s.cancelled.Load() {
		s.pauseCond.Wait()
	}
	s.pauseMu.Unlock()
}

// collect aggregates worker results into the shared progress state. After
// cancellation remaining results are drained but not recorded.
func (s *Scanner) collect(wg *sync.WaitGroup, resultsChan <-chan models.ScanResult, onThreat func(models.ScanResult)) {
	defer wg.Done()

	for res := range resultsChan {
		if s.cancelled.Load() {
			continue
		}

		s.mu.Lock()
		s.results = append(s.results, res)
		s.progress.ScannedFiles++
		s.progress.CurrentFile = res.FilePath
		if res.IsThreat() {
			s.progress.ThreatsFound++
		}
		last := res
		s.progress.LastResult = &last
		snapshot := s.progress
		s.mu.Unlock()

		if res.IsThreat() {
			s.logger.Warn("threat detected",
				zap.String("path", res.FilePath),
				zap.String("threat", res.ThreatName),
				zap.String("level", res.Level.String()),
				zap.String("method", string(res.Method)))
			if onThreat != nil {
				onThreat(res)
			}
		}
		s.publish(snapshot)
	}
}

// scanPath reads one file and classifies it. The header and the full-file
// hash come from a single pass over the content. Errors degrade to a clean
// result carrying the error text; a scan never fails as a whole because one
// file was unreadable.
func (s *Scanner) scanPath(path string) models.ScanResult {
	res := models.ScanResult{FilePath: path, ScanTime: time.Now()}

	f, err := os.Open(path)
	if err != nil {
		res.Description = "scan failed: " + err.Error()
		s.metrics.CounterInc(metrics.ScanFilesTotal.Name, "status", "error")
		return res
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		res.FileSize = info.Size()
	}

	header := make([]byte, engine.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		res.Description = "scan failed: " + err.Error()
		s.metrics.CounterInc(metrics.ScanFilesTotal.Name, "status", "error")
		return res
	}
	header = header[:n]

	hasher := sha256.New()
	hasher.Write(header)
	if _, err := io.Copy(hasher, f); err == nil {
		res.FileHash = hex.EncodeToString(hasher.Sum(nil))
	} else {
		// Header checks still apply; only hash matching is lost.
		s.logger.Debug("hash unavailable", zap.String("path", path), zap.Error(err))
	}

	det := s.engine.Classify(path, header, res.FileHash)
	if det.IsThreat() {
		res.Level = det.Level
		res.ThreatName = det.Name
		res.Description = det.Description
		res.Method = det.Method
		s.metrics.CounterInc(metrics.ScanFilesTotal.Name, "status", "threat")
		s.metrics.CounterInc(metrics.ScanThreatsTotal.Name,
			"level", res.Level.String(), "method", string(res.Method))
	} else {
		s.metrics.CounterInc(metrics.ScanFilesTotal.Name, "status", "clean")
	}
	return res
}
