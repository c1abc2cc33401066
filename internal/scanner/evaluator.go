// -----------------------------------------------------------------------
// Rule Evaluator - Pure alt-text quality verdict for a single text value
// -----------------------------------------------------------------------

package scanner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/floodlight/altmon/internal/models"
)

var (
	// trailing image-file extension
	filenameExtPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|svg)$`)
	// leading camera/screenshot prefix followed by a digit run
	cameraPrefixPattern = regexp.MustCompile(`(?i)^(img|dsc|pxl|photo|screen)[-_ ]?\d{2,}`)
	// long pure-hex token (content hashes used as filenames)
	hexTokenPattern = regexp.MustCompile(`(?i)^[a-f0-9]{16,}$`)
)

// Verdict is the outcome of evaluating one alt text value
type Verdict struct {
	Severity    models.Severity
	Issues      []string
	MatchedRule string
}

// Evaluate judges a trimmed alt text value against the rule configuration.
// Pure function: no I/O, deterministic.
//
// An empty value is exclusive: only missing_alt fires and no further checks
// run. Non-empty values are tested in fixed order (too-short, filename-like,
// generic); tags accumulate, severity is the maximum across fired rules, and
// MatchedRule records the first rule that fired.
func Evaluate(altTrimmed string, rules models.RuleConfig) Verdict {
	verdict := Verdict{Severity: models.SeverityOK, Issues: []string{}}

	if altTrimmed == "" {
		if rules.MissingAltError {
			verdict.Severity = models.SeverityError
		} else {
			verdict.Severity = models.SeverityWarning
		}
		verdict.addIssue(models.IssueMissingAlt)
		return verdict
	}

	if utf8.RuneCountInString(altTrimmed) < rules.MinAltLength {
		verdict.Severity = models.MaxSeverity(verdict.Severity, models.SeverityWarning)
		verdict.addIssue(models.IssueAltTooShort)
	}

	if rules.DetectFilename && looksLikeFilename(altTrimmed) {
		verdict.Severity = models.MaxSeverity(verdict.Severity, models.SeverityWarning)
		verdict.addIssue(models.IssueAltLooksFilename)
	}

	if len(rules.GenericWords) > 0 && rules.IsGenericWord(altTrimmed) {
		verdict.Severity = models.MaxSeverity(verdict.Severity, models.SeverityWarning)
		verdict.addIssue(models.IssueAltGeneric)
	}

	return verdict
}

func (v *Verdict) addIssue(tag string) {
	v.Issues = append(v.Issues, tag)
	if v.MatchedRule == "" {
		v.MatchedRule = tag
	}
}

// looksLikeFilename detects alt text that is really a filename or an
// automatic camera name rather than a description
func looksLikeFilename(alt string) bool {
	s := strings.ToLower(strings.TrimSpace(alt))
	if filenameExtPattern.MatchString(s) {
		return true
	}
	if cameraPrefixPattern.MatchString(s) {
		return true
	}
	return hexTokenPattern.MatchString(s)
}
