package models

import (
	"bytes"
	"regexp"
)

// SignatureEntry describes a known file by its SHA-256 content hash.
// Hashes are stored lowercase and compared case-insensitively.
type SignatureEntry struct {
	SHA256      string
	Name        string
	Level       ThreatLevel
	Description string
}

// PatternRule describes a byte or regular-expression pattern searched for in
// file content. Exactly one of Literal or Regex is set. Ordering within a
// rule set is significant: the first matching rule wins.
type PatternRule struct {
	Name        string
	Level       ThreatLevel
	Description string
	Literal     []byte
	Regex       *regexp.Regexp
}

// Matches reports whether the rule matches anywhere in data.
func (r PatternRule) Matches(data []byte) bool {
	if r.Regex != nil {
		return r.Regex.Match(data)
	}
	return len(r.Literal) > 0 && bytes.Contains(data, r.Literal)
}
