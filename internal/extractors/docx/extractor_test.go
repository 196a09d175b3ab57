package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// buildDocx assembles a minimal DOCX archive around the given
// word/document.xml body.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func extract(t *testing.T, content []byte) *domain.ParsedDocument {
	t.Helper()
	doc, err := New().Extract(context.Background(), &domain.RawFile{
		Name:    "agreement.docx",
		Content: content,
	})
	require.NoError(t, err)
	return doc
}

func TestExtract_Paragraphs(t *testing.T) {
	content := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>SERVICES AGREEMENT</w:t></w:r></w:p>
    <w:p><w:r><w:t>This agreement is made between </w:t></w:r><w:r><w:t>the parties below.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	doc := extract(t, content)
	assert.True(t, doc.Success)
	assert.Equal(t, "SERVICES AGREEMENT\nThis agreement is made between the parties below.", doc.Content)
}

func TestExtract_TabsAndBreaks(t *testing.T) {
	content := buildDocx(t, `<w:document xmlns:w="x"><w:body>
<w:p><w:r><w:t>Clause 1</w:t><w:tab/><w:t>Payment</w:t><w:br/><w:t>Net 30</w:t></w:r></w:p>
</w:body></w:document>`)

	doc := extract(t, content)
	assert.Equal(t, "Clause 1\tPayment\nNet 30", doc.Content)
}

func TestExtract_RichContentNotice(t *testing.T) {
	content := buildDocx(t, `<w:document xmlns:w="x"><w:body>
<w:p><w:r><w:t>See the org chart:</w:t></w:r></w:p>
<w:p><w:r><w:drawing/></w:r></w:p>
</w:body></w:document>`)

	doc := extract(t, content)
	assert.True(t, doc.Success)
	assert.Contains(t, doc.Content, "See the org chart:")
	assert.Contains(t, doc.Content, "formatting has been simplified")
}

func TestExtract_OnlyImagesFails(t *testing.T) {
	content := buildDocx(t, `<w:document xmlns:w="x"><w:body>
<w:p><w:r><w:drawing/></w:r></w:p>
</w:body></w:document>`)

	doc := extract(t, content)
	assert.False(t, doc.Success)
	assert.Contains(t, doc.Content, "only images, charts, or embedded objects")
	assert.Equal(t, "no text content in document", doc.Error)
}

func TestExtract_NotAZip(t *testing.T) {
	doc := extract(t, []byte("this is not a zip archive at all"))
	assert.False(t, doc.Success)
	assert.Equal(t, "not a valid DOCX archive", doc.Error)
	assert.Contains(t, doc.Content, "legacy .doc file")
}

func TestExtract_ZipWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("unrelated.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	doc := extract(t, buf.Bytes())
	assert.False(t, doc.Success)
	assert.Equal(t, "missing word/document.xml", doc.Error)
}

func TestExtract_NilInput(t *testing.T) {
	doc, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}
