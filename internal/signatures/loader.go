package signatures

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

// signatureFile is the YAML layout of a custom signature file.
type signatureFile struct {
	Hashes   []hashEntry    `yaml:"hashes"`
	Patterns []patternEntry `yaml:"patterns"`
}

type hashEntry struct {
	Hash        string `yaml:"hash"`
	Name        string `yaml:"name"`
	Level       string `yaml:"level"`
	Description string `yaml:"description,omitempty"`
}

type patternEntry struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	IsRegex     bool   `yaml:"is_regex"`
	Level       string `yaml:"level"`
	Description string `yaml:"description,omitempty"`
}

// LoadCustom merges custom signatures from a YAML file into the database.
// A missing file is not an error. Malformed entries are skipped with a
// warning so one bad rule cannot take down the rest of the file.
func (db *Database) LoadCustom(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read signatures %s: %w", path, err)
	}

	var file signatureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse signatures %s: %w", path, err)
	}

	for _, h := range file.Hashes {
		level, ok := models.ParseThreatLevel(h.Level)
		if !ok {
			db.logger.Warn("skipping hash signature with unknown level",
				zap.String("name", h.Name),
				zap.String("level", h.Level))
			continue
		}
		desc := h.Description
		if desc == "" {
			desc = "Custom signature detection"
		}
		db.AddHash(models.SignatureEntry{
			SHA256:      h.Hash,
			Name:        h.Name,
			Level:       level,
			Description: desc,
		})
	}

	for _, p := range file.Patterns {
		level, ok := models.ParseThreatLevel(p.Level)
		if !ok {
			db.logger.Warn("skipping pattern signature with unknown level",
				zap.String("name", p.Name),
				zap.String("level", p.Level))
			continue
		}
		rule := models.PatternRule{
			Name:        p.Name,
			Level:       level,
			Description: p.Description,
		}
		if rule.Description == "" {
			rule.Description = "Custom pattern detection"
		}
		if p.IsRegex {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				db.logger.Warn("skipping pattern signature that does not compile",
					zap.String("name", p.Name),
					zap.Error(err))
				continue
			}
			rule.Regex = re
		} else {
			rule.Literal = []byte(p.Pattern)
		}
		db.AddPattern(rule)
	}

	db.logger.Info("loaded custom signatures",
		zap.String("path", path),
		zap.Int("hashes", len(file.Hashes)),
		zap.Int("patterns", len(file.Patterns)))
	return nil
}

// SaveCustom writes the custom signatures (not the built-ins) to a YAML file
// readable by LoadCustom.
func (db *Database) SaveCustom(path string) error {
	db.mu.RLock()
	file := signatureFile{}
	for _, hash := range db.customOrder {
		entry := db.customHashes[hash]
		file.Hashes = append(file.Hashes, hashEntry{
			Hash:        entry.SHA256,
			Name:        entry.Name,
			Level:       entry.Level.String(),
			Description: entry.Description,
		})
	}
	for _, rule := range db.customPatterns {
		pe := patternEntry{
			Name:        rule.Name,
			Level:       rule.Level.String(),
			Description: rule.Description,
		}
		if rule.Regex != nil {
			pe.Pattern = rule.Regex.String()
			pe.IsRegex = true
		} else {
			pe.Pattern = string(rule.Literal)
		}
		file.Patterns = append(file.Patterns, pe)
	}
	db.mu.RUnlock()

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encode signatures: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create signatures dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write signatures %s: %w", path, err)
	}
	return nil
}
