package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

// generateMarkdown generates a Markdown report
func (g *Generator) generateMarkdown(summary *Summary, outputFile string) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Sentry Malware Scan Report v%s\n\n", summary.Version))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Scan Type | %s |\n", summary.ScanType))
	sb.WriteString(fmt.Sprintf("| Paths | `%s` |\n", strings.Join(summary.Paths, "`, `")))
	sb.WriteString(fmt.Sprintf("| Status | %s |\n", summary.Status))
	sb.WriteString(fmt.Sprintf("| Start Time | %s |\n", summary.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("| End Time | %s |\n", summary.EndTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", FormatDuration(summary.Duration)))
	sb.WriteString(fmt.Sprintf("| Total Files | %d |\n", summary.TotalFiles))
	sb.WriteString(fmt.Sprintf("| Scanned Files | %d |\n", summary.ScannedFiles))
	sb.WriteString(fmt.Sprintf("| Scan Errors | %d |\n", summary.Errors))
	sb.WriteString(fmt.Sprintf("| **Threats Found** | **%d** |\n", summary.ThreatsFound))
	sb.WriteString("\n")

	if summary.ThreatsFound == 0 {
		sb.WriteString("> ✅ **No threats detected**\n\n")
		return os.WriteFile(outputFile, []byte(sb.String()), 0644)
	}

	sb.WriteString("## Threats by Level\n\n")
	sb.WriteString("| Level | Count |\n")
	sb.WriteString("|-------|-------|\n")
	for _, level := range levelOrder {
		if count := summary.ByLevel[level.String()]; count > 0 {
			emoji := getLevelEmoji(level)
			sb.WriteString(fmt.Sprintf("| %s %s | %d |\n", emoji, level.String(), count))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Threats by Detection Method\n\n")
	sb.WriteString("| Method | Count |\n")
	sb.WriteString("|--------|-------|\n")
	for _, method := range methodOrder {
		if count := summary.ByMethod[string(method)]; count > 0 {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", method, count))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Detailed Findings\n\n")

	for i, threat := range summary.Threats {
		emoji := getLevelEmoji(threat.Level)
		sb.WriteString(fmt.Sprintf("### %d. %s %s\n\n", i+1, emoji, threat.ThreatName))

		sb.WriteString("| Field | Value |\n")
		sb.WriteString("|-------|-------|\n")
		sb.WriteString(fmt.Sprintf("| File | `%s` |\n", threat.FilePath))
		sb.WriteString(fmt.Sprintf("| Level | %s |\n", threat.Level.String()))
		sb.WriteString(fmt.Sprintf("| Method | %s |\n", threat.Method))
		sb.WriteString(fmt.Sprintf("| Size | %d bytes |\n", threat.FileSize))
		if threat.FileHash != "" {
			sb.WriteString(fmt.Sprintf("| SHA-256 | `%s` |\n", threat.FileHash))
		}
		sb.WriteString("\n")

		if threat.Description != "" {
			sb.WriteString(fmt.Sprintf("**Description:** %s\n\n", threat.Description))
		}

		sb.WriteString("---\n\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString("*Generated by Sentry Antivirus*\n")

	return os.WriteFile(outputFile, []byte(sb.String()), 0644)
}

// getLevelEmoji returns emoji for a threat level
func getLevelEmoji(level models.ThreatLevel) string {
	switch level {
	case models.LevelCritical:
		return "🔴"
	case models.LevelHigh:
		return "🟠"
	case models.LevelMedium:
		return "🟡"
	case models.LevelLow:
		return "🟢"
	default:
		return "⚪"
	}
}
