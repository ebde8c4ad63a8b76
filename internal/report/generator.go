package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LinkyJayy/Sentry-Antivirus/internal/config"
	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorWhite  = "\033[37m"
	colorOrange = "\033[38;5;208m"
	colorGray   = "\033[38;5;245m"
)

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Summary aggregates one finished scan for reporting.
type Summary struct {
	Version      string              `json:"version,omitempty"`
	ScanType     string              `json:"scan_type"`
	Paths        []string            `json:"paths"`
	SessionID    string              `json:"session_id,omitempty"`
	Status       models.ScanStatus   `json:"status"`
	StartTime    time.Time           `json:"start_time"`
	EndTime      time.Time           `json:"end_time"`
	Duration     time.Duration       `json:"duration"`
	TotalFiles   int                 `json:"total_files"`
	ScannedFiles int                 `json:"scanned_files"`
	ThreatsFound int                 `json:"threats_found"`
	Errors       int                 `json:"errors"`
	Threats      []models.ScanResult `json:"threats"`
	ByLevel      map[string]int      `json:"threats_by_level,omitempty"`
	ByMethod     map[string]int      `json:"threats_by_method,omitempty"`
}

// NewSummary builds a Summary from the orchestrator's final progress snapshot
// and the per-file results. Threats are ordered worst first.
func NewSummary(scanType string, paths []string, progress models.ScanProgress, results []models.ScanResult) *Summary {
	s := &Summary{
		ScanType:     scanType,
		Paths:        paths,
		SessionID:    progress.SessionID,
		Status:       progress.Status,
		StartTime:    progress.StartTime,
		EndTime:      progress.EndTime,
		Duration:     progress.Elapsed(),
		TotalFiles:   progress.TotalFiles,
		ScannedFiles: progress.ScannedFiles,
		ByLevel:      make(map[string]int),
		ByMethod:     make(map[string]int),
	}

	for _, r := range results {
		if strings.HasPrefix(r.Description, "scan failed") {
			s.Errors++
			continue
		}
		if !r.IsThreat() {
			continue
		}
		s.Threats = append(s.Threats, r)
		s.ByLevel[r.Level.String()]++
		s.ByMethod[string(r.Method)]++
	}
	s.ThreatsFound = len(s.Threats)

	sort.Slice(s.Threats, func(i, j int) bool {
		if s.Threats[i].Level != s.Threats[j].Level {
			return s.Threats[i].Level > s.Threats[j].Level
		}
		return s.Threats[i].FilePath < s.Threats[j].FilePath
	})
	return s
}

// levelOrder is the display order for per-level breakdowns.
var levelOrder = []models.ThreatLevel{
	models.LevelCritical,
	models.LevelHigh,
	models.LevelMedium,
	models.LevelLow,
}

// methodOrder is the display order for per-method breakdowns.
var methodOrder = []models.DetectionMethod{
	models.MethodSignature,
	models.MethodPattern,
	models.MethodHeuristic,
}

// Generator generates scan reports in various formats
type Generator struct {
	config *config.Config
	logger *zap.Logger
}

// NewGenerator creates a new report generator
func NewGenerator(cfg *config.Config, logger *zap.Logger) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		config: cfg,
		logger: logger,
	}, nil
}

// Generate renders the summary in the configured format. With no format
// configured it prints to the console and returns an empty path; otherwise
// it writes a file and returns its absolute path.
func (g *Generator) Generate(summary *Summary) (string, error) {
	format := g.config.ReportFormat
	outputFile := g.config.OutputFile

	if format == "" {
		g.printConsole(summary)
		return "", nil
	}

	if outputFile == "" {
		timestamp := time.Now().Format("20060102-150405")
		switch format {
		case "json":
			outputFile = fmt.Sprintf("SENTRY-REPORT-%s.json", timestamp)
		case "txt", "text":
			outputFile = fmt.Sprintf("SENTRY-REPORT-%s.txt", timestamp)
		case "md", "markdown":
			outputFile = fmt.Sprintf("SENTRY-REPORT-%s.md", timestamp)
		default:
			return "", fmt.Errorf("unknown report format: %s", format)
		}
	}

	g.logger.Info("Generating report",
		zap.String("format", format),
		zap.String("output", outputFile))

	var err error
	switch format {
	case "json":
		err = g.generateJSON(summary, outputFile)
	case "txt", "text":
		err = g.generateText(summary, outputFile)
	case "md", "markdown":
		err = g.generateMarkdown(summary, outputFile)
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}

	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	absPath, _ := filepath.Abs(outputFile)
	return absPath, nil
}

// printConsole prints the summary to stdout with colors
func (g *Generator) printConsole(summary *Summary) {
	fmt.Println()

	header := "SCAN COMPLETE"
	if summary.Status == models.StatusCancelled {
		header = "SCAN CANCELLED"
	}
	fmt.Printf("%s%s%s%s\n", colorBold, colorOrange, header, colorReset)
	fmt.Println()

	fmt.Printf("  %sPaths:%s     %s\n", colorGray, colorReset, strings.Join(summary.Paths, ", "))
	fmt.Printf("  %sType:%s      %s\n", colorGray, colorReset, summary.ScanType)
	fmt.Printf("  %sFiles:%s     %d of %d\n", colorGray, colorReset, summary.ScannedFiles, summary.TotalFiles)
	fmt.Printf("  %sDuration:%s  %s\n", colorGray, colorReset, FormatDuration(summary.Duration))
	if summary.Errors > 0 {
		fmt.Printf("  %sErrors:%s    %d\n", colorGray, colorReset, summary.Errors)
	}
	fmt.Println()

	if summary.ThreatsFound == 0 {
		fmt.Printf("  %s%s✓ No threats detected%s\n", colorBold, colorGreen, colorReset)
		fmt.Println()
		return
	}

	fmt.Printf("  %s%s⚠ THREATS FOUND: %d%s\n", colorBold, colorRed, summary.ThreatsFound, colorReset)
	fmt.Println()
	fmt.Printf("%s───────────────────────────────────────────────────────────────%s\n", colorGray, colorReset)

	for i, threat := range summary.Threats {
		levelColor := getLevelColor(threat.Level)

		fmt.Printf("\n  %s%s[%d]%s %s%s%s\n", colorBold, colorWhite, i+1, colorReset, colorBold, threat.ThreatName, colorReset)
		fmt.Printf("      %sLevel:%s     %s%s%s\n", colorGray, colorReset, levelColor, threat.Level.String(), colorReset)
		fmt.Printf("      %sFile:%s      %s%s%s\n", colorGray, colorReset, colorOrange, threat.FilePath, colorReset)
		fmt.Printf("      %sMethod:%s    %s\n", colorGray, colorReset, threat.Method)
		if threat.Description != "" {
			fmt.Printf("      %sDetails:%s   %s%s%s\n", colorGray, colorReset, colorDim, truncate(threat.Description, 120), colorReset)
		}
	}

	fmt.Println()
	fmt.Printf("%s───────────────────────────────────────────────────────────────%s\n", colorGray, colorReset)
	fmt.Println()
}

// getLevelColor returns ANSI color for a threat level
func getLevelColor(level models.ThreatLevel) string {
	switch level {
	case models.LevelCritical:
		return colorRed + colorBold
	case models.LevelHigh:
		return colorOrange
	case models.LevelMedium:
		return colorYellow
	case models.LevelLow:
		return colorGreen
	default:
		return colorWhite
	}
}

// truncate shortens a one-line description for console output
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
