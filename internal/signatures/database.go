package signatures

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

// Database holds the ordered union of built-in and custom signatures.
// Custom entries are appended and searched after built-ins. Lookups are safe
// for concurrent use with rule additions.
type Database struct {
	mu             sync.RWMutex
	customHashes   map[string]models.SignatureEntry
	customOrder    []string
	customPatterns []models.PatternRule
	logger         *zap.Logger
}

// NewDatabase creates a database containing only the built-in signatures.
func NewDatabase(logger *zap.Logger) *Database {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Database{
		customHashes: make(map[string]models.SignatureEntry),
		logger:       logger,
	}
}

// CheckHash looks up a SHA-256 hex hash. Comparison is case-insensitive;
// built-in entries are consulted before custom ones.
func (db *Database) CheckHash(fileHash string) (models.SignatureEntry, bool) {
	fileHash = strings.ToLower(fileHash)

	for _, entry := range builtinHashes {
		if entry.SHA256 == fileHash {
			return entry, true
		}
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	if entry, ok := db.customHashes[fileHash]; ok {
		return entry, true
	}
	return models.SignatureEntry{}, false
}

// CheckPatterns scans data against all pattern rules in order, built-ins
// first. The first matching rule is returned.
func (db *Database) CheckPatterns(data []byte) (models.PatternRule, bool) {
	for _, rule := range builtinPatterns {
		if rule.Matches(data) {
			return rule, true
		}
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, rule := range db.customPatterns {
		if rule.Matches(data) {
			return rule, true
		}
	}
	return models.PatternRule{}, false
}

// AddHash registers a custom hash signature. Re-adding a hash replaces the
// previous entry but keeps its search position.
func (db *Database) AddHash(entry models.SignatureEntry) {
	entry.SHA256 = strings.ToLower(entry.SHA256)

	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.customHashes[entry.SHA256]; !exists {
		db.customOrder = append(db.customOrder, entry.SHA256)
	}
	db.customHashes[entry.SHA256] = entry
}

// AddPattern appends a custom pattern rule after all existing rules.
func (db *Database) AddPattern(rule models.PatternRule) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.customPatterns = append(db.customPatterns, rule)
}

// Counts reports how many signatures are loaded.
type Counts struct {
	HashSignatures    int `json:"hash_signatures"`
	PatternSignatures int `json:"pattern_signatures"`
	Total             int `json:"total"`
}

// Counts returns the number of loaded signatures, built-in and custom.
func (db *Database) Counts() Counts {
	db.mu.RLock()
	defer db.mu.RUnlock()

	c := Counts{
		HashSignatures:    len(builtinHashes) + len(db.customHashes),
		PatternSignatures: len(builtinPatterns) + len(db.customPatterns),
	}
	c.Total = c.HashSignatures + c.PatternSignatures
	return c
}
