// -----------------------------------------------------------------------
// Field Tree - Resolved schema + values for one content record
// -----------------------------------------------------------------------

package models

import "time"

// FieldType is the node kind in a content record's field tree
type FieldType string

const (
	FieldTypeImage    FieldType = "image"    // single asset reference
	FieldTypeGallery  FieldType = "gallery"  // sequence of asset references
	FieldTypeGroup    FieldType = "group"    // keyed bundle of sub-fields
	FieldTypeRepeater FieldType = "repeater" // sequence of keyed bundles
	FieldTypeFlexible FieldType = "flexible" // sequence of layout-tagged bundles
	FieldTypeRichText FieldType = "richtext" // markup string with inline images
)

// FlexibleLayoutKey is the bundle key carrying the layout tag inside a
// flexible field's value rows.
const FlexibleLayoutKey = "layout"

// FieldObject is one node of a record's resolved field tree. Value carries
// the JSON-shaped data at this node: scalars, []any for sequences, and
// map[string]any for keyed bundles.
type FieldObject struct {
	Name      string         `json:"name"`
	Type      FieldType      `json:"type"`
	Value     any            `json:"value,omitempty"`
	SubFields []*FieldObject `json:"sub_fields,omitempty"` // group, repeater
	Layouts   []*FieldLayout `json:"layouts,omitempty"`    // flexible
}

// FieldLayout is one variant of a flexible field, selected at runtime by
// the row's layout tag.
type FieldLayout struct {
	Name      string         `json:"name"`
	SubFields []*FieldObject `json:"sub_fields"`
}

// LayoutByName returns the declared layout matching a tag, or nil for
// unknown tags (which walkers skip silently).
func (f *FieldObject) LayoutByName(name string) *FieldLayout {
	for _, layout := range f.Layouts {
		if layout.Name == name {
			return layout
		}
	}
	return nil
}

// ContentRecord is one structured content entry with its field tree
// already resolved by the content repository.
type ContentRecord struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	ContentType string         `json:"content_type"`
	ModifiedAt  time.Time      `json:"modified_at"`
	EditURL     string         `json:"edit_url,omitempty"`
	Fields      []*FieldObject `json:"fields"`
}

// AssetMetadata is the stored description of one media asset
type AssetMetadata struct {
	ID       int64  `json:"id" badgerhold:"key"`
	AltText  string `json:"alt_text"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	EditURL  string `json:"edit_url,omitempty"`
}

// IsImage reports whether the asset's mime type is an image type
func (a *AssetMetadata) IsImage() bool {
	return len(a.MimeType) >= 6 && a.MimeType[:6] == "image/"
}
