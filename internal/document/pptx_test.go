package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func samplePresentation(t *testing.T) string {
	return writeTemp(t, "deck.pptx", pptxBytes(t,
		slideXML(
			pptShape("Beca Generación del Bicentenario"),
			pptShape(),
			pptGroup(pptShape("dentro de grupo")),
			pptTable("Edad", "25"),
			pptShape("Requisitos", "Promedio 14"),
		),
		slideXML(),
		slideXML(pptShape("Plazo: 30 de abril")),
	))
}

func TestPPTXDecoder_Lightweight(t *testing.T) {
	segs, err := PPTXDecoder{Mode: PPTXLightweight}.Decode(context.Background(), samplePresentation(t))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "Beca Generación del Bicentenario\nRequisitos\nPromedio 14\nPlazo: 30 de abril", segs[0])
}

func TestPPTXDecoder_Full(t *testing.T) {
	segs, err := PPTXDecoder{Mode: PPTXFull}.Decode(context.Background(), samplePresentation(t))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Beca Generación del Bicentenario\ndentro de grupo\nEdad\n25\nRequisitos\nPromedio 14",
		"Plazo: 30 de abril",
	}, segs)
}

func TestPPTXDecoder_FallbackSlideNumbering(t *testing.T) {
	p := writeTemp(t, "bare.pptx", zipBytes(t, map[string]string{
		"ppt/slides/slide10.xml":           slideXML(pptShape("diez")),
		"ppt/slides/slide2.xml":            slideXML(pptShape("dos")),
		"ppt/slides/_rels/slide2.xml.rels": "<Relationships/>",
	}))
	segs, err := PPTXDecoder{Mode: PPTXLightweight}.Decode(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"dos\ndiez"}, segs)
}

func TestPPTXDecoder_LineBreakInParagraph(t *testing.T) {
	shape := `<p:sp><p:txBody><a:p><a:r><a:t>uno</a:t></a:r><a:br/><a:r><a:t>dos</a:t></a:r></a:p></p:txBody></p:sp>`
	p := writeTemp(t, "br.pptx", pptxBytes(t, slideXML(shape)))
	segs, err := PPTXDecoder{Mode: PPTXLightweight}.Decode(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"uno\ndos"}, segs)
}
