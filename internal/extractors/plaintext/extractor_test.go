package plaintext

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
	assert.IsType(t, &Extractor{}, e)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestExtract_NilInput(t *testing.T) {
	doc, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestExtract_Lossless(t *testing.T) {
	// Stripping the wrapper must recover the source text exactly.
	tests := []struct {
		name  string
		file  string
		label string
	}{
		{"text file", "notes.txt", "TEXT FILE"},
		{"csv file", "billing.csv", "CSV FILE"},
		{"markdown file", "memo.md", "MARKDOWN FILE"},
		{"unknown extension", "data.log", "FILE"},
	}

	source := "Line one\nLine two,with comma\n\ttabbed"

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := New().Extract(context.Background(), &domain.RawFile{
				Name:    tc.file,
				Content: []byte(source),
			})
			require.NoError(t, err)
			assert.True(t, doc.Success)
			assert.True(t, strings.HasPrefix(doc.Content, "=== "+tc.label+": "+tc.file+" ==="))

			_, body, found := strings.Cut(doc.Content, "\n\n")
			require.True(t, found)
			assert.Equal(t, source, body)
		})
	}
}

func TestExtract_JSONPrettyPrint(t *testing.T) {
	doc, err := New().Extract(context.Background(), &domain.RawFile{
		Name:    "matter.json",
		Content: []byte(`{"client":"Acme","matter":42}`),
	})
	require.NoError(t, err)
	assert.True(t, doc.Success)
	assert.Contains(t, doc.Content, "{\n  \"client\": \"Acme\",\n  \"matter\": 42\n}")
	assert.Equal(t, "application/json", doc.FileType)
}

func TestExtract_InvalidJSONPassesThrough(t *testing.T) {
	// Malformed JSON is not a failure: the raw content passes through.
	doc, err := New().Extract(context.Background(), &domain.RawFile{
		Name:    "broken.json",
		Content: []byte(`{"client": truncated`),
	})
	require.NoError(t, err)
	assert.True(t, doc.Success)
	assert.Contains(t, doc.Content, `{"client": truncated`)
}

func TestExtract_EmptyContent(t *testing.T) {
	doc, err := New().Extract(context.Background(), &domain.RawFile{
		Name:    "blank.txt",
		Content: []byte("   \n  "),
	})
	require.NoError(t, err)
	assert.False(t, doc.Success)
	assert.NotEmpty(t, doc.Content)
	assert.Equal(t, "empty file", doc.Error)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
