package report

import (
	"encoding/json"
	"os"
)

// generateJSON generates a JSON report
func (g *Generator) generateJSON(summary *Summary, outputFile string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputFile, data, 0644)
}
