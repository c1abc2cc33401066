package models

import "strings"

// RuleConfig holds the immutable per-scan rule settings. Supplied once when
// a job starts and never mutated mid-scan.
type RuleConfig struct {
	MissingAltError bool     `json:"missing_alt_error"`
	MinAltLength    int      `json:"min_alt_length"`
	DetectFilename  bool     `json:"detect_filename"`
	GenericWords    []string `json:"generic_words"` // lowercase, deduplicated
}

// DefaultGenericWords is the stock list of throwaway alt values
const DefaultGenericWords = "image,photo,picture,graphic,logo,icon,banner,untitled,placeholder"

// DefaultRuleConfig returns the stock rule settings
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		MissingAltError: true,
		MinAltLength:    5,
		DetectFilename:  true,
		GenericWords:    ParseGenericWords(DefaultGenericWords),
	}
}

// ParseGenericWords splits a comma-separated word list into a lowercase,
// trimmed, deduplicated slice. Empty entries are dropped.
func ParseGenericWords(csv string) []string {
	parts := strings.Split(strings.ToLower(csv), ",")
	seen := make(map[string]bool, len(parts))
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		word := strings.TrimSpace(part)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	return words
}

// IsGenericWord reports case-insensitive exact membership in the word list
func (r *RuleConfig) IsGenericWord(alt string) bool {
	s := strings.ToLower(strings.TrimSpace(alt))
	for _, word := range r.GenericWords {
		if s == word {
			return true
		}
	}
	return false
}

// ScopeMode constrains which content records a content scan considers
type ScopeMode string

const (
	ScopeAll            ScopeMode = "all"
	ScopeModifiedWithin ScopeMode = "modified_within"
	ScopeMostRecent     ScopeMode = "most_recent"
)

// ScanScope is the content-scan record filter. Days applies to
// modified_within, Count to most_recent.
type ScanScope struct {
	Mode  ScopeMode `json:"mode"`
	Days  int       `json:"days,omitempty"`
	Count int       `json:"count,omitempty"`
}

// DefaultScanScope scans everything
func DefaultScanScope() ScanScope {
	return ScanScope{Mode: ScopeAll}
}
