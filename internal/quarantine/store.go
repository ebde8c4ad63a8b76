// Package quarantine isolates detected files. Content is sealed into
// encrypted envelopes under the quarantine root and tracked in a JSON
// journal; the journal on disk is the single source of truth across
// restarts.
package quarantine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LinkyJayy/Sentry-Antivirus/internal/metrics"
	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

const (
	journalName    = "quarantine.json"
	journalVersion = "1.0"
	blobExtension  = ".quarantine"
)

var (
	// ErrNotFound means no journal record exists for the given id.
	ErrNotFound = errors.New("quarantine: item not found")

	// ErrBadMagic means a blob is not a quarantine envelope.
	ErrBadMagic = errors.New("quarantine: bad envelope magic")

	// ErrEncryption means an envelope failed to decode.
	ErrEncryption = errors.New("quarantine: envelope corrupted")
)

// Store manages quarantined files under a single root directory.
type Store struct {
	root        string
	journalPath string
	logger      *zap.Logger
	metrics     metrics.Collector
	codec       *codec

	mu    sync.Mutex
	items map[string]models.QuarantinedItem
}

// journal is the on-disk document holding all quarantine records.
type journal struct {
	Version     string                   `json:"version"`
	LastUpdated string                   `json:"last_updated"`
	Items       []models.QuarantinedItem `json:"items"`
}

// NewStore opens (or creates) a quarantine store rooted at dir and loads its
// journal. Records whose envelope files have disappeared are dropped.
func NewStore(dir string, logger *zap.Logger, collector metrics.Collector) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.Nop{}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create quarantine directory: %w", err)
	}

	s := &Store{
		root:        dir,
		journalPath: filepath.Join(dir, journalName),
		logger:      logger,
		metrics:     collector,
		codec:       newCodec(),
		items:       make(map[string]models.QuarantinedItem),
	}

	if err := s.loadJournal(); err != nil {
		return nil, err
	}
	s.metrics.GaugeSet(metrics.QuarantineItems.Name, float64(len(s.items)))
	return s, nil
}

// Root returns the quarantine root directory.
func (s *Store) Root() string {
	return s.root
}

// Isolate seals the file at path into the store and removes the original.
// The journal record is written before the original is deleted, so a crash
// in between leaves a recoverable duplicate rather than a lost file. A zero
// detection marks a manual quarantine.
func (s *Store) Isolate(path string, det models.Detection) (models.QuarantinedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		s.countOp("isolate", "error")
		return models.QuarantinedItem{}, fmt.Errorf("failed to read file: %w", err)
	}

	sum := sha256.Sum256(data)
	id := generateID(path)

	blobDir := filepath.Join(s.root, time.Now().Format("2006-01"))
	if err := os.MkdirAll(blobDir, 0700); err != nil {
		s.countOp("isolate", "error")
		return models.QuarantinedItem{}, fmt.Errorf("failed to create blob directory: %w", err)
	}
	blobPath := filepath.Join(blobDir, id+blobExtension)

	blob, err := s.codec.Seal(data)
	if err != nil {
		s.countOp("isolate", "error")
		return models.QuarantinedItem{}, err
	}
	if err := os.WriteFile(blobPath, blob, 0600); err != nil {
		s.countOp("isolate", "error")
		return models.QuarantinedItem{}, fmt.Errorf("failed to write envelope: %w", err)
	}

	item := models.QuarantinedItem{
		ID:              id,
		OriginalPath:    path,
		QuarantinePath:  blobPath,
		FileHash:        hex.EncodeToString(sum[:]),
		FileSize:        int64(len(data)),
		ThreatName:      det.Name,
		ThreatLevel:     det.Level.String(),
		ThreatDesc:      det.Description,
		QuarantineDate:  time.Now().Format(time.RFC3339),
		DetectionMethod: string(det.Method),
	}
	if det.Method == "" {
		item.ThreatName = "Unknown Threat"
		item.ThreatLevel = "UNKNOWN"
		item.DetectionMethod = string(models.MethodManual)
	}

	s.items[id] = item
	s.saveJournal()

	if err := removeWithRetry(path); err != nil {
		// Roll back: a record pointing at a still-present original would
		// count the threat twice.
		os.Remove(blobPath)
		delete(s.items, id)
		s.saveJournal()
		s.countOp("isolate", "error")
		return models.QuarantinedItem{}, fmt.Errorf("failed to remove original: %w", err)
	}

	s.countOp("isolate", "ok")
	s.metrics.GaugeSet(metrics.QuarantineItems.Name, float64(len(s.items)))
	s.logger.Info("file quarantined",
		zap.String("id", id),
		zap.String("path", path),
		zap.String("threat", item.ThreatName),
		zap.String("level", item.ThreatLevel))
	return item, nil
}

// Restore decrypts a quarantined file back to restorePath, or to its
// original location when restorePath is empty. The journal record and the
// envelope are removed on success. A record whose envelope has vanished is
// purged and reported as not found.
func (s *Store) Restore(id, restorePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		s.countOp("restore", "error")
		return ErrNotFound
	}

	blob, err := os.ReadFile(item.QuarantinePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("purging orphaned quarantine record",
				zap.String("id", id),
				zap.String("envelope", item.QuarantinePath))
			delete(s.items, id)
			s.saveJournal()
			s.metrics.GaugeSet(metrics.QuarantineItems.Name, float64(len(s.items)))
			s.countOp("restore", "error")
			return fmt.Errorf("%w: envelope missing", ErrNotFound)
		}
		s.countOp("restore", "error")
		return fmt.Errorf("failed to read envelope: %w", err)
	}

	plain, err := s.codec.Open(blob)
	if err != nil {
		s.countOp("restore", "error")
		return err
	}

	dest := restorePath
	if dest == "" {
		dest = item.OriginalPath
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		s.countOp("restore", "error")
		return fmt.Errorf("failed to create restore directory: %w", err)
	}
	if err := os.WriteFile(dest, plain, 0644); err != nil {
		s.countOp("restore", "error")
		return fmt.Errorf("failed to write restored file: %w", err)
	}

	os.Remove(item.QuarantinePath)
	delete(s.items, id)
	s.saveJournal()

	s.countOp("restore", "ok")
	s.metrics.GaugeSet(metrics.QuarantineItems.Name, float64(len(s.items)))
	s.logger.Info("file restored",
		zap.String("id", id),
		zap.String("path", dest))
	return nil
}

// DeletePermanently removes a quarantined item and its envelope. A missing
// envelope is not an error; the record is dropped either way.
func (s *Store) DeletePermanently(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *Store) deleteLocked(id string) error {
	item, ok := s.items[id]
	if !ok {
		s.countOp("delete", "error")
		return ErrNotFound
	}

	if err := os.Remove(item.QuarantinePath); err != nil && !os.IsNotExist(err) {
		s.countOp("delete", "error")
		return fmt.Errorf("failed to remove envelope: %w", err)
	}

	delete(s.items, id)
	s.saveJournal()

	s.countOp("delete", "ok")
	s.metrics.GaugeSet(metrics.QuarantineItems.Name, float64(len(s.items)))
	s.logger.Info("quarantined file deleted", zap.String("id", id))
	return nil
}

// Item returns the record for id.
func (s *Store) Item(id string) (models.QuarantinedItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	return item, ok
}

// Items returns all records ordered by quarantine date, oldest first.
func (s *Store) Items() []models.QuarantinedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// Count returns the number of quarantined items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalSize returns the combined original size of all quarantined files.
func (s *Store) TotalSize() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, item := range s.items {
		total += item.FileSize
	}
	return total
}

// PurgeOlderThan deletes items quarantined more than the given number of
// days ago and returns how many were removed. Records with unparseable
// dates are left alone.
func (s *Store) PurgeOlderThan(days int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	var stale []string
	for id, item := range s.items {
		when, err := time.Parse(time.RFC3339, item.QuarantineDate)
		if err != nil {
			continue
		}
		if when.Before(cutoff) {
			stale = append(stale, id)
		}
	}

	deleted := 0
	for _, id := range stale {
		if err := s.deleteLocked(id); err == nil {
			deleted++
		}
	}
	if deleted > 0 {
		s.logger.Info("purged old quarantine items", zap.Int("deleted", deleted), zap.Int("days", days))
	}
	return deleted
}

// exportedItem is the per-item subset included in quarantine reports.
type exportedItem struct {
	ID             string `json:"id"`
	OriginalPath   string `json:"original_path"`
	ThreatName     string `json:"threat_name"`
	ThreatLevel    string `json:"threat_level"`
	QuarantineDate string `json:"quarantine_date"`
	FileSize       int64  `json:"file_size"`
	FileHash       string `json:"file_hash"`
}

// ExportReport writes a JSON summary of the store to outputPath.
func (s *Store) ExportReport(outputPath string) error {
	s.mu.Lock()
	items := s.sortedLocked()
	var total int64
	for _, item := range items {
		total += item.FileSize
	}
	s.mu.Unlock()

	report := struct {
		Generated  string         `json:"generated"`
		TotalItems int            `json:"total_items"`
		TotalSize  int64          `json:"total_size_bytes"`
		Items      []exportedItem `json:"items"`
	}{
		Generated:  time.Now().Format(time.RFC3339),
		TotalItems: len(items),
		TotalSize:  total,
		Items:      make([]exportedItem, 0, len(items)),
	}
	for _, item := range items {
		report.Items = append(report.Items, exportedItem{
			ID:             item.ID,
			OriginalPath:   item.OriginalPath,
			ThreatName:     item.ThreatName,
			ThreatLevel:    item.ThreatLevel,
			QuarantineDate: item.QuarantineDate,
			FileSize:       item.FileSize,
			FileHash:       item.FileHash,
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// sortedLocked returns items ordered by date then id. Callers hold s.mu.
func (s *Store) sortedLocked() []models.QuarantinedItem {
	out := make([]models.QuarantinedItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuarantineDate != out[j].QuarantineDate {
			return out[i].QuarantineDate < out[j].QuarantineDate
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// loadJournal reads the journal from disk. A corrupt journal is logged and
// treated as empty rather than blocking startup; orphaned records are
// dropped and the journal rewritten.
func (s *Store) loadJournal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.journalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read quarantine journal: %w", err)
	}

	var doc journal
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("quarantine journal corrupt, starting empty", zap.Error(err))
		return nil
	}

	orphans := 0
	for _, item := range doc.Items {
		if _, err := os.Stat(item.QuarantinePath); err != nil {
			orphans++
			s.logger.Warn("dropping orphaned quarantine record",
				zap.String("id", item.ID),
				zap.String("envelope", item.QuarantinePath))
			continue
		}
		s.items[item.ID] = item
	}
	if orphans > 0 {
		s.saveJournal()
	}
	return nil
}

// saveJournal writes the journal to disk. Callers hold s.mu. Failures are
// logged, not returned: in-memory state stays authoritative for the session
// and the next successful save repairs the file.
func (s *Store) saveJournal() {
	doc := journal{
		Version:     journalVersion,
		LastUpdated: time.Now().Format(time.RFC3339),
		Items:       s.sortedLocked(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode quarantine journal", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.journalPath, data, 0600); err != nil {
		s.logger.Error("failed to write quarantine journal", zap.Error(err))
	}
}

func (s *Store) countOp(operation, outcome string) {
	s.metrics.CounterInc(metrics.QuarantineOpsTotal.Name,
		"operation", operation, "outcome", outcome)
}

// generateID derives a short unique id from the path and the current time.
func generateID(path string) string {
	sum := sha256.Sum256([]byte(path + time.Now().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])[:16]
}

// removeWithRetry deletes a file, clearing a read-only attribute on the
// first failure.
func removeWithRetry(path string) error {
	err := os.Remove(path)
	if err == nil {
		return nil
	}
	if chmodErr := os.Chmod(path, 0777); chmodErr != nil {
		return err
	}
	return os.Remove(path)
}
