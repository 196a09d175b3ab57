package rtf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

func extract(t *testing.T, content string) *domain.ParsedDocument {
	t.Helper()
	doc, err := New().Extract(context.Background(), &domain.RawFile{
		Name:    "letter.rtf",
		Content: []byte(content),
	})
	require.NoError(t, err)
	return doc
}

func TestExtract_SimpleDocument(t *testing.T) {
	rtf := `{\rtf1\ansi\deff0 {\fonttbl{\f0 Times New Roman;}}
\f0\fs24 Dear counsel,\par
We refer to the agreement dated January 5.\par
Regards,\par Smith}`

	doc := extract(t, rtf)
	assert.True(t, doc.Success)
	assert.Contains(t, doc.Content, "Dear counsel,")
	assert.Contains(t, doc.Content, "We refer to the agreement dated January 5.")
	assert.NotContains(t, doc.Content, "Times New Roman")
	assert.NotContains(t, doc.Content, `\par`)
	assert.NotContains(t, doc.Content, "{")
}

func TestExtract_MetadataGroupsRemoved(t *testing.T) {
	rtf := `{\rtf1{\fonttbl{\f0 Arial;}}{\colortbl;\red0\green0\blue0;}{\stylesheet{\s1 Heading;}}{\info{\author J. Smith}}Body text of the notice.\par}`

	doc := extract(t, rtf)
	assert.True(t, doc.Success)
	assert.Contains(t, doc.Content, "Body text of the notice.")
	assert.NotContains(t, doc.Content, "Arial")
	assert.NotContains(t, doc.Content, "Heading")
	assert.NotContains(t, doc.Content, "J. Smith")
}

func TestExtract_ControlSequences(t *testing.T) {
	tests := []struct {
		name string
		rtf  string
		want string
	}{
		{
			name: "par becomes newline",
			rtf:  `{\rtf1 first paragraph\par second paragraph}`,
			want: "first paragraph\nsecond paragraph",
		},
		{
			name: "line becomes newline",
			rtf:  `{\rtf1 line one\line line two}`,
			want: "line one\nline two",
		},
		{
			name: "tab becomes tab",
			rtf:  `{\rtf1 left\tab right of the tab stop}`,
			want: "left\tright of the tab stop",
		},
		{
			name: "hex escape decodes",
			rtf:  `{\rtf1 caf\'e9 meeting this afternoon}`,
			want: "caf\xe9 meeting this afternoon",
		},
		{
			name: "escaped braces kept",
			rtf:  `{\rtf1 clause \{a\} applies to all parties}`,
			want: "clause {a} applies to all parties",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := extract(t, tc.rtf)
			assert.Equal(t, tc.want, doc.Content)
		})
	}
}

func TestExtract_NewlineCollapse(t *testing.T) {
	doc := extract(t, `{\rtf1 top section\par\par\par\par bottom section of text}`)
	assert.Contains(t, doc.Content, "top section\n\nbottom section")
}

func TestExtract_TooShortFails(t *testing.T) {
	doc := extract(t, `{\rtf1\ansi\deff0 ok}`)
	assert.False(t, doc.Success)
	assert.Contains(t, doc.Content, "Converting it to DOCX")
	assert.NotEmpty(t, doc.Error)
}

func TestExtract_NilInput(t *testing.T) {
	doc, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}
