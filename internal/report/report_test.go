package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/LinkyJayy/Sentry-Antivirus/internal/config"
	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"milliseconds", 250 * time.Millisecond, "250.00ms"},
		{"seconds", 2500 * time.Millisecond, "2.50s"},
		{"minutes", 90 * time.Second, "1m30.00s"},
		{"hours", time.Hour + 5*time.Minute + 3*time.Second, "1h5m3.00s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.duration); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func sampleResults() (models.ScanProgress, []models.ScanResult) {
	start := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	progress := models.ScanProgress{
		SessionID:    "test-session",
		Status:       models.StatusCompleted,
		TotalFiles:   5,
		ScannedFiles: 5,
		ThreatsFound: 2,
		StartTime:    start,
		EndTime:      start.Add(3 * time.Second),
	}
	results := []models.ScanResult{
		{FilePath: "/tmp/clean.py", Level: models.LevelClean},
		{FilePath: "/tmp/b.exe", Level: models.LevelHigh, ThreatName: "Trojan.Test.A", Method: models.MethodSignature, FileSize: 64, FileHash: "aabb"},
		{FilePath: "/tmp/a.exe", Level: models.LevelHigh, ThreatName: "Trojan.Test.B", Method: models.MethodPattern, FileSize: 32},
		{FilePath: "/tmp/worse.dll", Level: models.LevelCritical, ThreatName: "Rootkit.Test", Method: models.MethodSignature, Description: "matched kernel hook pattern"},
		{FilePath: "/tmp/locked.doc", Level: models.LevelClean, Description: "scan failed: permission denied"},
	}
	return progress, results
}

func TestNewSummary(t *testing.T) {
	progress, results := sampleResults()
	s := NewSummary("quick", []string{"/tmp"}, progress, results)

	if s.ThreatsFound != 3 {
		t.Errorf("ThreatsFound = %d, want 3", s.ThreatsFound)
	}
	if s.Errors != 1 {
		t.Errorf("Errors = %d, want 1", s.Errors)
	}
	if s.Duration != 3*time.Second {
		t.Errorf("Duration = %v, want 3s", s.Duration)
	}
	if got := s.ByLevel["HIGH"]; got != 2 {
		t.Errorf("ByLevel[HIGH] = %d, want 2", got)
	}
	if got := s.ByLevel["CRITICAL"]; got != 1 {
		t.Errorf("ByLevel[CRITICAL] = %d, want 1", got)
	}
	if got := s.ByMethod["signature"]; got != 2 {
		t.Errorf("ByMethod[signature] = %d, want 2", got)
	}

	// Worst level first, then path order within a level.
	wantOrder := []string{"/tmp/worse.dll", "/tmp/a.exe", "/tmp/b.exe"}
	for i, want := range wantOrder {
		if s.Threats[i].FilePath != want {
			t.Errorf("Threats[%d].FilePath = %q, want %q", i, s.Threats[i].FilePath, want)
		}
	}
}

func TestNewSummaryNoThreats(t *testing.T) {
	progress := models.ScanProgress{Status: models.StatusCompleted, TotalFiles: 1, ScannedFiles: 1}
	s := NewSummary("custom", []string{"/data"}, progress, []models.ScanResult{
		{FilePath: "/data/ok.py", Level: models.LevelClean},
	})

	if s.ThreatsFound != 0 {
		t.Errorf("ThreatsFound = %d, want 0", s.ThreatsFound)
	}
	if len(s.Threats) != 0 {
		t.Errorf("Threats = %v, want empty", s.Threats)
	}
}

func newTestGenerator(t *testing.T, format, output string) *Generator {
	t.Helper()
	cfg := &config.Config{ReportFormat: format, OutputFile: output}
	g, err := NewGenerator(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return g
}

func TestGenerateJSON(t *testing.T) {
	progress, results := sampleResults()
	summary := NewSummary("quick", []string{"/tmp"}, progress, results)
	summary.Version = "1.0.0"

	out := filepath.Join(t.TempDir(), "report.json")
	g := newTestGenerator(t, "json", out)

	path, err := g.Generate(summary)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if path == "" {
		t.Fatal("Generate() returned empty path")
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var decoded Summary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.ThreatsFound != 3 {
		t.Errorf("decoded ThreatsFound = %d, want 3", decoded.ThreatsFound)
	}
	if decoded.Version != "1.0.0" {
		t.Errorf("decoded Version = %q, want 1.0.0", decoded.Version)
	}
	if len(decoded.Threats) != 3 {
		t.Errorf("decoded %d threats, want 3", len(decoded.Threats))
	}
}

func TestGenerateText(t *testing.T) {
	progress, results := sampleResults()
	summary := NewSummary("quick", []string{"/tmp"}, progress, results)
	summary.Version = "1.0.0"

	out := filepath.Join(t.TempDir(), "report.txt")
	g := newTestGenerator(t, "text", out)

	if _, err := g.Generate(summary); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"SENTRY MALWARE SCAN REPORT v1.0.0",
		"THREATS FOUND:    3",
		"Rootkit.Test",
		"/tmp/worse.dll",
		"CRITICAL",
		"matched kernel hook pattern",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestGenerateMarkdown(t *testing.T) {
	progress, results := sampleResults()
	summary := NewSummary("full", []string{"/"}, progress, results)
	summary.Version = "1.0.0"

	out := filepath.Join(t.TempDir(), "report.md")
	g := newTestGenerator(t, "markdown", out)

	if _, err := g.Generate(summary); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# Sentry Malware Scan Report v1.0.0",
		"| **Threats Found** | **3** |",
		"### 1. 🔴 Rootkit.Test",
		"`/tmp/worse.dll`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}
}

func TestGenerateMarkdownClean(t *testing.T) {
	progress := models.ScanProgress{Status: models.StatusCompleted, TotalFiles: 2, ScannedFiles: 2}
	summary := NewSummary("quick", []string{"/tmp"}, progress, nil)

	out := filepath.Join(t.TempDir(), "clean.md")
	g := newTestGenerator(t, "md", out)

	if _, err := g.Generate(summary); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "No threats detected") {
		t.Error("clean markdown report missing no-threats banner")
	}
}

func TestGenerateUnknownFormat(t *testing.T) {
	g := newTestGenerator(t, "xml", "")
	if _, err := g.Generate(&Summary{}); err == nil {
		t.Error("Generate() with unknown format succeeded, want error")
	}
}

func TestGenerateConsole(t *testing.T) {
	progress, results := sampleResults()
	summary := NewSummary("quick", []string{"/tmp"}, progress, results)

	g := newTestGenerator(t, "", "")
	path, err := g.Generate(summary)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if path != "" {
		t.Errorf("console output returned path %q, want empty", path)
	}
}
