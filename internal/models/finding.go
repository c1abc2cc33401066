// -----------------------------------------------------------------------
// Finding - One evaluated describable-image occurrence with its verdict
// -----------------------------------------------------------------------

package models

// Severity ranks a finding. Ordering is ok < warning < error.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severityRank = map[Severity]int{
	SeverityOK:      0,
	SeverityWarning: 1,
	SeverityError:   2,
}

// MaxSeverity returns the higher-ranked of two severities
func MaxSeverity(a, b Severity) Severity {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// FindingSource identifies where a describable image was discovered
type FindingSource string

const (
	SourceMedia          FindingSource = "media"
	SourceContentImage   FindingSource = "content_image"
	SourceContentGallery FindingSource = "content_gallery"
	SourceInlineMarkup   FindingSource = "content_inline_markup"
)

// Issue tags, in evaluation order
const (
	IssueMissingAlt       = "missing_alt"
	IssueAltTooShort      = "alt_too_short"
	IssueAltLooksFilename = "alt_looks_like_filename"
	IssueAltGeneric       = "alt_generic"
)

// Finding is one evaluated image occurrence. Issues preserve first-detected
// order and MatchedRule records the first rule that fired.
type Finding struct {
	Source      FindingSource `json:"source"`
	Severity    Severity      `json:"severity"`
	Issues      []string      `json:"issues"`
	MatchedRule string        `json:"matched_rule"`

	AltRaw     string `json:"alt_raw"`
	AltTrimmed string `json:"alt_trimmed"`
	AltLength  int    `json:"alt_length"` // code points, not bytes

	AttachmentID int64  `json:"attachment_id"` // 0 when no asset resolvable
	FileName     string `json:"file_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	Title        string `json:"title,omitempty"`

	// Location within a content record (empty for media-library findings)
	FieldPath      string `json:"field_path,omitempty"`
	ContainerID    int64  `json:"container_id,omitempty"`
	ContainerTitle string `json:"container_title,omitempty"`

	// Stored alt of the owning asset for inline markup findings. Auxiliary
	// context only, never affects severity.
	ContextAlt string `json:"context_alt,omitempty"`
}

// HasIssue reports whether the finding carries the given issue tag
func (f *Finding) HasIssue(tag string) bool {
	for _, issue := range f.Issues {
		if issue == tag {
			return true
		}
	}
	return false
}
