package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGenericWords(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []string
	}{
		{
			name: "defaults",
			csv:  DefaultGenericWords,
			want: []string{"image", "photo", "picture", "graphic", "logo", "icon", "banner", "untitled", "placeholder"},
		},
		{
			name: "trims and lowercases",
			csv:  " Image , PHOTO ,logo",
			want: []string{"image", "photo", "logo"},
		},
		{
			name: "drops empties and duplicates",
			csv:  "image,,image, ,photo",
			want: []string{"image", "photo"},
		},
		{
			name: "empty input",
			csv:  "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGenericWords(tt.csv))
		})
	}
}

func TestRuleConfig_IsGenericWord(t *testing.T) {
	rules := DefaultRuleConfig()

	assert.True(t, rules.IsGenericWord("photo"))
	assert.True(t, rules.IsGenericWord("  Photo  "))
	assert.True(t, rules.IsGenericWord("LOGO"))
	assert.False(t, rules.IsGenericWord("photo of a dog"))
	assert.False(t, rules.IsGenericWord(""))
}

func TestMaxSeverity(t *testing.T) {
	assert.Equal(t, SeverityError, MaxSeverity(SeverityWarning, SeverityError))
	assert.Equal(t, SeverityError, MaxSeverity(SeverityError, SeverityOK))
	assert.Equal(t, SeverityWarning, MaxSeverity(SeverityOK, SeverityWarning))
	assert.Equal(t, SeverityOK, MaxSeverity(SeverityOK, SeverityOK))
}

func TestFindingsCollection_CountsStayConsistent(t *testing.T) {
	c := NewFindingsCollection("scan_test")

	c.Append(
		Finding{Severity: SeverityOK},
		Finding{Severity: SeverityWarning},
		Finding{Severity: SeverityError},
		Finding{Severity: SeverityError},
	)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 1, c.Counts[SeverityOK])
	assert.Equal(t, 1, c.Counts[SeverityWarning])
	assert.Equal(t, 2, c.Counts[SeverityError])

	sum := 0
	for _, n := range c.Counts {
		sum += n
	}
	assert.Equal(t, c.Len(), sum)
}
