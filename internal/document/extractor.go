// Package document turns an uploaded file into plain text. Format detection
// is by file extension only; byte-level parsing is delegated to one Decoder
// per format.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/comigor/becas-go/internal/logger"
)

var (
	// ErrUnsupportedFormat matches every *UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("document parse failure")
)

// UnsupportedFormatError reports an extension outside the recognised set.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q", e.Ext)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// ParseError reports a decoder that could not produce text.
type ParseError struct {
	Ext string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Ext, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Decoder reads the file at path and yields its text segments in order.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]string, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, path string) ([]string, error)

func (f DecoderFunc) Decode(ctx context.Context, path string) ([]string, error) { return f(ctx, path) }

// Upload is a file as received from the user.
type Upload struct {
	Name string
	Data []byte
}

// Ext returns the lower-cased extension of name without the dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// segmentSeparator joins the segments a decoder yields.
const segmentSeparator = "\n\n"

// Extractor dispatches uploads to decoders by extension.
type Extractor struct {
	decoders map[string]Decoder
	tempDir  string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTempDir sets where the scratch copy of an upload is written.
func WithTempDir(dir string) Option {
	return func(e *Extractor) { e.tempDir = dir }
}

// WithPPTXMode picks the PowerPoint decoder.
func WithPPTXMode(mode PPTXMode) Option {
	return func(e *Extractor) { e.decoders["pptx"] = PPTXDecoder{Mode: mode} }
}

// WithLegacyFormats also accepts .doc and .ppt, handing them to the DOCX and
// PPTX decoders. Files in the old binary formats then fail to parse.
func WithLegacyFormats(enabled bool) Option {
	return func(e *Extractor) {
		if !enabled {
			delete(e.decoders, "doc")
			delete(e.decoders, "ppt")
			return
		}
		e.decoders["doc"] = DOCXDecoder{}
		e.decoders["ppt"] = pptAlias{e}
	}
}

// WithDecoder registers d for ext, replacing any existing decoder.
func WithDecoder(ext string, d Decoder) Option {
	return func(e *Extractor) { e.decoders[strings.ToLower(strings.TrimPrefix(ext, "."))] = d }
}

// New returns an Extractor for pdf, txt, docx and pptx.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		decoders: map[string]Decoder{
			"pdf":  PDFDecoder{},
			"txt":  TextDecoder{},
			"docx": DOCXDecoder{},
			"pptx": PPTXDecoder{Mode: PPTXLightweight},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the plain text of the file. The upload is copied to a temp
// file for the decoder and the copy is removed on every return path.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	ext := Ext(name)
	dec, ok := e.decoders[ext]
	if !ok {
		logger.L.Info("unsupported upload", "name", name, "ext", ext)
		return "", &UnsupportedFormatError{Ext: ext}
	}

	path, cleanup, err := e.scratchCopy(ext, data)
	if err != nil {
		return "", &ParseError{Ext: ext, Err: err}
	}
	defer cleanup()

	segments, err := decodeSafely(ctx, dec, path)
	if err != nil {
		logger.L.Warn("document decode failed", "name", name, "ext", ext, "error", err)
		return "", &ParseError{Ext: ext, Err: err}
	}

	text := strings.Join(segments, segmentSeparator)
	logger.L.Debug("document extracted", "name", name, "ext", ext, "segments", len(segments), "bytes", len(text))
	return text, nil
}

func (e *Extractor) scratchCopy(ext string, data []byte) (string, func(), error) {
	f, err := os.CreateTemp(e.tempDir, "becas-upload-*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.L.Warn("failed to remove temp upload", "path", f.Name(), "error", rmErr)
		}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}

// decodeSafely turns decoder panics into errors; some parsers panic on
// malformed input instead of returning an error.
func decodeSafely(ctx context.Context, dec Decoder, path string) (segments []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			segments, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return dec.Decode(ctx, path)
}

// pptAlias resolves to whichever PPTX decoder is configured at call time.
type pptAlias struct{ e *Extractor }

func (a pptAlias) Decode(ctx context.Context, path string) ([]string, error) {
	return a.e.decoders["pptx"].Decode(ctx, path)
}
