package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDOCXDecoder(t *testing.T) {
	body := `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Beca 18</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Plazo:</w:t></w:r><w:r><w:tab/><w:t>31 de marzo</w:t><w:br/><w:t>Lima</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc>` + para("Celda") + `</w:tc></w:tr></w:tbl>`
	p := writeTemp(t, "a.docx", docxBytes(t, body))

	segs, err := DOCXDecoder{}.Decode(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beca 18\n\nPlazo:\t31 de marzo\nLima\n\nCelda"}, segs)
}

func TestDOCXDecoder_MissingDocumentPart(t *testing.T) {
	p := writeTemp(t, "a.docx", zipBytes(t, map[string]string{"word/styles.xml": "<x/>"}))
	_, err := DOCXDecoder{}.Decode(context.Background(), p)
	assert.Error(t, err)
}

func TestTextDecoder(t *testing.T) {
	segs, err := TextDecoder{}.Decode(context.Background(), writeTemp(t, "a.txt", []byte("año\n")))
	require.NoError(t, err)
	assert.Equal(t, []string{"año\n"}, segs)

	_, err = TextDecoder{}.Decode(context.Background(), writeTemp(t, "b.txt", []byte{0xe9}))
	assert.ErrorIs(t, err, errNotUTF8)
}
