// Package grounding builds the payload sent to the model for one turn,
// splicing an attached document into a fixed analysis prompt.
package grounding

import (
	"fmt"
	"unicode/utf8"
)

// MaxDocumentChars is how many characters of an attached document reach the model.
const MaxDocumentChars = 8000

// Attachment is the extracted text of the document attached to a turn.
type Attachment struct {
	Name string
	Text string
}

// AnalysisInstructions gates document analysis to formal higher-education
// scholarships. It is sent verbatim after the document text.
const AnalysisInstructions = `INSTRUCCIONES ESTRICTAS PARA EL ANÁLISIS:
1. Analiza el documento SOLO si está relacionado con becas para programas académicos de pregrado, maestría o doctorado
2. Si el documento trata sobre otros temas (cursos cortos, talleres, pasantías no académicas, etc.):
   - Detén el análisis inmediatamente
   - Responde: "El documento analizado no corresponde a becas para educación superior formal"
   - No proporciones ningún resumen o información del documento
3. Si el documento SÍ es sobre becas académicas:
   - Proporciona un resumen claro del contenido
   - Identifica requisitos, plazos, beneficios específicos
   - Ofrece recomendaciones basadas en el documento
   - Señala información faltante si aplica

Responde la pregunta del usuario basándote estrictamente en estas instrucciones.`

const groundedTemplate = `
Pregunta del usuario: %s

Documento adjunto (%s):
%s

%s
`

// Compose returns the payload for question. Without a document (nil or empty
// text) the question is returned verbatim.
func Compose(question string, doc *Attachment) string {
	if doc == nil || doc.Text == "" {
		return question
	}
	return fmt.Sprintf(groundedTemplate, question, doc.Name, Truncate(doc.Text, MaxDocumentChars), AnalysisInstructions)
}

// Truncate returns the first n characters of s. Characters are code points,
// so multi-byte letters like "ñ" count once.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// IsTruncated reports whether Compose would cut text.
func IsTruncated(text string) bool {
	return utf8.RuneCountInString(text) > MaxDocumentChars
}
