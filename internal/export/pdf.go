package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/comigor/becas-go/internal/history"
)

const (
	pdfTitle  = "CONVERSACIÓN – AGENTE DE BECAS"
	pdfMargin = 36.0
)

// PDF renders msgs as an A4 document: a title block, then per message a blue
// bold role label followed by the body with its line breaks.
func PDF(w io.Writer, msgs []history.Message) error {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	doc.SetTitle(pdfTitle, true)
	doc.SetCreator("becas", true)
	tr := cp1252

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 22, tr(pdfTitle), "", "C", false)
	doc.Ln(12)

	for i, m := range msgs {
		doc.SetFont("Helvetica", "B", 11)
		doc.SetTextColor(0x0b, 0x53, 0x94)
		doc.MultiCell(0, 14, tr(fmt.Sprintf("%d. %s", i+1, RoleLabel(m.Role))), "", "L", false)
		doc.Ln(2)

		doc.SetFont("Helvetica", "", 10.5)
		doc.SetTextColor(0, 0, 0)
		doc.MultiCell(0, 14, tr(m.Content), "", "L", false)
		doc.Ln(8)
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return doc.Output(w)
}

// cp1252 encodes s for the core fonts. Runes the code page lacks (the emoji
// that prefix status replies) are dropped together with the space after them.
func cp1252(s string) string {
	var b strings.Builder
	dropped := false
	for _, r := range s {
		if dropped && r == ' ' {
			dropped = false
			continue
		}
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			dropped = true
			continue
		}
		dropped = false
		b.WriteByte(c)
	}
	return b.String()
}
