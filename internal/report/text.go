package report

import (
	"fmt"
	"os"
	"strings"
)

// generateText generates a plain-text report
func (g *Generator) generateText(summary *Summary, outputFile string) error {
	var sb strings.Builder

	sb.WriteString("=" + strings.Repeat("=", 78) + "\n")
	sb.WriteString(fmt.Sprintf("  SENTRY MALWARE SCAN REPORT v%s\n", summary.Version))
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n\n")

	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Scan Type:        %s\n", summary.ScanType))
	sb.WriteString(fmt.Sprintf("Paths:            %s\n", strings.Join(summary.Paths, ", ")))
	sb.WriteString(fmt.Sprintf("Status:           %s\n", summary.Status))
	sb.WriteString(fmt.Sprintf("Start Time:       %s\n", summary.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("End Time:         %s\n", summary.EndTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(summary.Duration)))
	sb.WriteString(fmt.Sprintf("Total Files:      %d\n", summary.TotalFiles))
	sb.WriteString(fmt.Sprintf("Scanned Files:    %d\n", summary.ScannedFiles))
	sb.WriteString(fmt.Sprintf("Scan Errors:      %d\n", summary.Errors))
	sb.WriteString(fmt.Sprintf("THREATS FOUND:    %d\n", summary.ThreatsFound))
	sb.WriteString("\n")

	if summary.ThreatsFound > 0 {
		sb.WriteString("THREATS BY LEVEL\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for _, level := range levelOrder {
			if count := summary.ByLevel[level.String()]; count > 0 {
				sb.WriteString(fmt.Sprintf("  %-10s: %d\n", level.String(), count))
			}
		}
		sb.WriteString("\n")

		sb.WriteString("THREATS BY DETECTION METHOD\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for _, method := range methodOrder {
			if count := summary.ByMethod[string(method)]; count > 0 {
				sb.WriteString(fmt.Sprintf("  %-10s: %d\n", method, count))
			}
		}
		sb.WriteString("\n")

		sb.WriteString("DETAILED FINDINGS\n")
		sb.WriteString(strings.Repeat("=", 79) + "\n\n")

		for i, threat := range summary.Threats {
			sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, threat.ThreatName))
			sb.WriteString(strings.Repeat("-", 79) + "\n")
			sb.WriteString(fmt.Sprintf("File:        %s\n", threat.FilePath))
			sb.WriteString(fmt.Sprintf("Level:       %s\n", threat.Level.String()))
			sb.WriteString(fmt.Sprintf("Method:      %s\n", threat.Method))
			sb.WriteString(fmt.Sprintf("Size:        %d bytes\n", threat.FileSize))
			if threat.FileHash != "" {
				sb.WriteString(fmt.Sprintf("SHA-256:     %s\n", threat.FileHash))
			}
			if threat.Description != "" {
				sb.WriteString(fmt.Sprintf("Description: %s\n", threat.Description))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No threats detected.\n\n")
	}

	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString("End of Report\n")
	sb.WriteString(strings.Repeat("=", 79) + "\n")

	return os.WriteFile(outputFile, []byte(sb.String()), 0644)
}
