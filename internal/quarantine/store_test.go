package quarantine

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/LinkyJayy/Sentry-Antivirus/internal/metrics"
	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "quarantine"), zap.NewNop(), metrics.NewMemory())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func writeInfected(t *testing.T, dir string) (string, []byte) {
	t.Helper()
	content := append([]byte("malicious payload \x00\x01\x02 "), bytes.Repeat([]byte{0xde, 0xad}, 64)...)
	path := filepath.Join(dir, "payload.exe")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path, content
}

func testDetection() models.Detection {
	return models.Detection{
		Level:       models.LevelHigh,
		Name:        "Trojan.Test.Gen",
		Description: "test detection",
		Method:      models.MethodSignature,
	}
}

func TestCodecRoundTrip(t *testing.T) {
	c := newCodec()

	tests := []struct {
		name  string
		plain []byte
	}{
		{"Empty", []byte{}},
		{"Text", []byte("hello quarantine")},
		{"Binary", bytes.Repeat([]byte{0x00, 0xff, 0x4d, 0x5a}, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := c.Seal(tt.plain)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if !bytes.HasPrefix(blob, []byte(blobMagic)) {
				t.Error("envelope missing magic header")
			}
			if len(tt.plain) > 0 && bytes.Contains(blob, tt.plain) {
				t.Error("plaintext visible inside envelope")
			}

			got, err := c.Open(blob)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(got, tt.plain) {
				t.Errorf("Open() = %q, want %q", got, tt.plain)
			}
		})
	}
}

func TestCodecBadMagic(t *testing.T) {
	c := newCodec()

	if _, err := c.Open([]byte("not an envelope")); !errors.Is(err, ErrBadMagic) {
		t.Errorf("Open() error = %v, want %v", err, ErrBadMagic)
	}
	if _, err := c.Open([]byte("SE")); !errors.Is(err, ErrBadMagic) {
		t.Errorf("Open() on short input error = %v, want %v", err, ErrBadMagic)
	}
}

func TestStore_Isolate(t *testing.T) {
	dir := t.TempDir()
	path, content := writeInfected(t, dir)
	s := newTestStore(t)

	item, err := s.Isolate(path, testDetection())
	if err != nil {
		t.Fatalf("Isolate() error = %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("original file still present after isolation")
	}
	if _, err := os.Stat(item.QuarantinePath); err != nil {
		t.Errorf("envelope missing: %v", err)
	}
	if !strings.HasSuffix(item.QuarantinePath, item.ID+blobExtension) {
		t.Errorf("envelope name = %v, want <id>%v", item.QuarantinePath, blobExtension)
	}
	if len(item.ID) != 16 {
		t.Errorf("id length = %d, want 16", len(item.ID))
	}
	if item.FileSize != int64(len(content)) {
		t.Errorf("FileSize = %d, want %d", item.FileSize, len(content))
	}
	if item.ThreatName != "Trojan.Test.Gen" {
		t.Errorf("ThreatName = %v, want Trojan.Test.Gen", item.ThreatName)
	}
	if item.ThreatLevel != "HIGH" {
		t.Errorf("ThreatLevel = %v, want HIGH", item.ThreatLevel)
	}
	if item.DetectionMethod != "signature" {
		t.Errorf("DetectionMethod = %v, want signature", item.DetectionMethod)
	}

	// Envelope must not contain the raw payload.
	blob, err := os.ReadFile(item.QuarantinePath)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(blob, []byte("malicious payload")) {
		t.Error("payload stored in cleartext")
	}

	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
	if s.TotalSize() != int64(len(content)) {
		t.Errorf("TotalSize() = %d, want %d", s.TotalSize(), len(content))
	}
}

func TestStore_IsolateManual(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeInfected(t, dir)
	s := newTestStore(t)

	item, err := s.Isolate(path, models.Detection{})
	if err != nil {
		t.Fatalf("Isolate() error = %v", err)
	}

	if item.ThreatName != "Unknown Threat" {
		t.Errorf("ThreatName = %v, want Unknown Threat", item.ThreatName)
	}
	if item.ThreatLevel != "UNKNOWN" {
		t.Errorf("ThreatLevel = %v, want UNKNOWN", item.ThreatLevel)
	}
	if item.DetectionMethod != "manual" {
		t.Errorf("DetectionMethod = %v, want manual", item.DetectionMethod)
	}
}

func TestStore_IsolateMissingFile(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Isolate("/does/not/exist.exe", testDetection()); err == nil {
		t.Error("Isolate() of missing file succeeded")
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestStore_RestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, content := writeInfected(t, dir)
	s := newTestStore(t)

	item, err := s.Isolate(path, testDetection())
	if err != nil {
		t.Fatalf("Isolate() error = %v", err)
	}

	if err := s.Restore(item.ID, ""); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	restored, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("restored file unreadable: %v", err)
	}
	if !bytes.Equal(restored, content) {
		t.Error("restored content differs from original")
	}
	if _, err := os.Stat(item.QuarantinePath); !os.IsNotExist(err) {
		t.Error("envelope still present after restore")
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestStore_RestoreToAlternatePath(t *testing.T) {
	dir := t.TempDir()
	path, content := writeInfected(t, dir)
	s := newTestStore(t)

	item, err := s.Isolate(path, testDetection())
	if err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "restored", "sample.bin")
	if err := s.Restore(item.ID, dest); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	restored, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("restored file unreadable: %v", err)
	}
	if !bytes.Equal(restored, content) {
		t.Error("restored content differs from original")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("alternate-path restore recreated the original location")
	}
}

func TestStore_RestoreUnknownID(t *testing.T) {
	s := newTestStore(t)

	if err := s.Restore("deadbeefdeadbeef", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Restore() error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_RestorePurgesOrphan(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeInfected(t, dir)
	s := newTestStore(t)

	item, err := s.Isolate(path, testDetection())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(item.QuarantinePath); err != nil {
		t.Fatal(err)
	}

	if err := s.Restore(item.ID, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Restore() error = %v, want %v", err, ErrNotFound)
	}
	if s.Count() != 0 {
		t.Errorf("orphaned record survived: Count() = %d, want 0", s.Count())
	}
}

func TestStore_RestoreBadEnvelope(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeInfected(t, dir)
	s := newTestStore(t)

	item, err := s.Isolate(path, testDetection())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(item.QuarantinePath, []byte("overwritten garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := s.Restore(item.ID, ""); !errors.Is(err, ErrBadMagic) {
		t.Errorf("Restore() error = %v, want %v", err, ErrBadMagic)
	}
	// The record stays; the operator can still delete it.
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestStore_DeletePermanently(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeInfected(t, dir)
	s := newTestStore(t)

	item, err := s.Isolate(path, testDetection())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeletePermanently(item.ID); err != nil {
		t.Fatalf("DeletePermanently() error = %v", err)
	}
	if _, err := os.Stat(item.QuarantinePath); !os.IsNotExist(err) {
		t.Error("envelope still present after delete")
	}
	if err := s.DeletePermanently(item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePermanently() error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_DeleteWithMissingEnvelope(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeInfected(t, dir)
	s := newTestStore(t)

	item, err := s.Isolate(path, testDetection())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(item.QuarantinePath); err != nil {
		t.Fatal(err)
	}

	if err := s.DeletePermanently(item.ID); err != nil {
		t.Errorf("DeletePermanently() with missing envelope error = %v, want nil", err)
	}
}

func TestStore_JournalSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path, content := writeInfected(t, dir)
	root := filepath.Join(dir, "quarantine")

	first, err := NewStore(root, zap.NewNop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	item, err := first.Isolate(path, testDetection())
	if err != nil {
		t.Fatal(err)
	}

	second, err := NewStore(root, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("NewStore() reopen error = %v", err)
	}
	if second.Count() != 1 {
		t.Fatalf("reopened Count() = %d, want 1", second.Count())
	}
	got, ok := second.Item(item.ID)
	if !ok {
		t.Fatal("record lost across reopen")
	}
	if got != item {
		t.Errorf("reloaded record = %+v, want %+v", got, item)
	}

	if err := second.Restore(item.ID, ""); err != nil {
		t.Fatalf("Restore() through reopened store error = %v", err)
	}
	restored, _ := os.ReadFile(path)
	if !bytes.Equal(restored, content) {
		t.Error("restored content differs after reopen")
	}
}

func TestStore_CorruptJournal(t *testing.T) {
	root := filepath.Join(t.TempDir(), "quarantine")
	if err := os.MkdirAll(root, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, journalName), []byte("{broken"), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := NewStore(root, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("NewStore() with corrupt journal error = %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestStore_DropsOrphansOnLoad(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeInfected(t, dir)
	root := filepath.Join(dir, "quarantine")

	first, err := NewStore(root, zap.NewNop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	item, err := first.Isolate(path, testDetection())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(item.QuarantinePath); err != nil {
		t.Fatal(err)
	}

	second, err := NewStore(root, zap.NewNop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after orphan drop", second.Count())
	}
}

func TestStore_PurgeOlderThan(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeInfected(t, dir)
	s := newTestStore(t)

	item, err := s.Isolate(path, testDetection())
	if err != nil {
		t.Fatal(err)
	}

	// Nothing is old enough yet.
	if got := s.PurgeOlderThan(30); got != 0 {
		t.Errorf("PurgeOlderThan(30) = %d, want 0", got)
	}

	s.mu.Lock()
	aged := s.items[item.ID]
	aged.QuarantineDate = time.Now().AddDate(0, 0, -40).Format(time.RFC3339)
	s.items[item.ID] = aged
	s.mu.Unlock()

	if got := s.PurgeOlderThan(30); got != 1 {
		t.Errorf("PurgeOlderThan(30) = %d, want 1", got)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestStore_ExportReport(t *testing.T) {
	dir := t.TempDir()
	path, content := writeInfected(t, dir)
	s := newTestStore(t)

	if _, err := s.Isolate(path, testDetection()); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "report.json")
	if err := s.ExportReport(out); err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	var report struct {
		Generated  string `json:"generated"`
		TotalItems int    `json:"total_items"`
		TotalSize  int64  `json:"total_size_bytes"`
		Items      []struct {
			ID           string `json:"id"`
			OriginalPath string `json:"original_path"`
			ThreatName   string `json:"threat_name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.TotalItems != 1 || len(report.Items) != 1 {
		t.Errorf("report items = %d/%d, want 1/1", report.TotalItems, len(report.Items))
	}
	if report.TotalSize != int64(len(content)) {
		t.Errorf("report size = %d, want %d", report.TotalSize, len(content))
	}
	if report.Items[0].OriginalPath != path {
		t.Errorf("report original_path = %v, want %v", report.Items[0].OriginalPath, path)
	}
}

func TestStore_ItemsSorted(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t)

	for _, name := range []string{"a.exe", "b.exe", "c.exe"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("payload "+name), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Isolate(p, testDetection()); err != nil {
			t.Fatal(err)
		}
	}

	items := s.Items()
	if len(items) != 3 {
		t.Fatalf("Items() = %d records, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].QuarantineDate > items[i].QuarantineDate {
			t.Errorf("Items() not ordered by date: %v > %v",
				items[i-1].QuarantineDate, items[i].QuarantineDate)
		}
	}
}
