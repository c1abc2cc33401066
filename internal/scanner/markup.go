// -----------------------------------------------------------------------
// Markup Extractor - Inline image discovery inside richtext values
// -----------------------------------------------------------------------

package scanner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// idClassPattern matches editor-emitted class tokens carrying the owning
// asset id, e.g. "wp-image-42" or "image-42"
var idClassPattern = regexp.MustCompile(`^(?:wp-)?image-(\d+)$`)

// InlineImage is one img element found inside a markup value
type InlineImage struct {
	Src     string
	Alt     string // empty when the alt attribute is absent
	ClassID int64  // id from a class token, 0 if none
	DataID  int64  // id from a numeric data attribute, 0 if none
}

// MarkupExtractor pulls img elements out of markup strings. Parsing is
// permissive: malformed markup yields whatever well-formed img elements are
// recoverable instead of an error.
type MarkupExtractor struct {
	logger arbor.ILogger
}

// NewMarkupExtractor creates a markup extractor
func NewMarkupExtractor(logger arbor.ILogger) *MarkupExtractor {
	return &MarkupExtractor{logger: logger}
}

// ExtractImages returns every img element present in the markup, in
// document order
func (m *MarkupExtractor) ExtractImages(markup string) []InlineImage {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		m.logger.Debug().Err(err).Msg("Failed to parse markup, skipping inline image extraction")
		return nil
	}

	var images []InlineImage
	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		img := InlineImage{}
		img.Src, _ = s.Attr("src")
		img.Alt, _ = s.Attr("alt") // absent attribute reads as empty string

		if class, exists := s.Attr("class"); exists {
			img.ClassID = idFromClass(class)
		}
		img.DataID = idFromDataAttrs(s)

		images = append(images, img)
	})

	return images
}

// idFromClass scans class tokens for an asset-id token
func idFromClass(class string) int64 {
	for _, token := range strings.Fields(class) {
		match := idClassPattern.FindStringSubmatch(token)
		if match == nil {
			continue
		}
		if id, err := strconv.ParseInt(match[1], 10, 64); err == nil {
			return id
		}
	}
	return 0
}

// idFromDataAttrs checks the numeric id attributes editors attach to images
func idFromDataAttrs(s *goquery.Selection) int64 {
	for _, attr := range []string{"data-id", "data-attachment-id"} {
		raw, exists := s.Attr(attr)
		if !exists {
			continue
		}
		if id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}
