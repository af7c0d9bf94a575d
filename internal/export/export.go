// Package export renders a conversation as a downloadable transcript.
package export

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/comigor/becas-go/internal/history"
)

// Format is a transcript file format.
type Format string

const (
	FormatTXT Format = "txt"
	FormatPDF Format = "pdf"
)

var (
	ErrFormatDisabled = errors.New("export format disabled")
	ErrUnknownFormat  = errors.New("unknown export format")
)

// Title heads every transcript.
const Title = "CONVERSACIÓN - AGENTE DE BECAS"

// ParseFormat accepts "txt" or "pdf" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTXT, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// RoleLabel is how a role is shown in transcripts.
func RoleLabel(r history.Role) string {
	if r == history.RoleUser {
		return "TÚ"
	}
	return "ASISTENTE"
}

// FileName returns e.g. conversacion_becas_20260314_0930.pdf.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("conversacion_becas_%s.%s", now.Format("20060102_1504"), f)
}

// Exporter writes transcripts in the enabled formats.
type Exporter struct {
	formats []Format
}

// New enables the given formats. Unknown names are ignored; config
// validation rejects them earlier.
func New(formats []string) *Exporter {
	e := &Exporter{}
	for _, s := range formats {
		if f, err := ParseFormat(s); err == nil && !slices.Contains(e.formats, f) {
			e.formats = append(e.formats, f)
		}
	}
	return e
}

// Formats lists the enabled formats.
func (e *Exporter) Formats() []Format { return slices.Clone(e.formats) }

// Enabled reports whether f may be exported.
func (e *Exporter) Enabled(f Format) bool { return slices.Contains(e.formats, f) }

// Write renders msgs as f into w.
func (e *Exporter) Write(w io.Writer, f Format, msgs []history.Message) error {
	if !e.Enabled(f) {
		return fmt.Errorf("%w: %s", ErrFormatDisabled, f)
	}
	switch f {
	case FormatTXT:
		_, err := io.WriteString(w, Text(msgs))
		return err
	case FormatPDF:
		return PDF(w, msgs)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
