package document

import (
	"context"
	"errors"
	"os"
	"unicode/utf8"
)

var errNotUTF8 = errors.New("file is not valid UTF-8 text")

// TextDecoder reads a UTF-8 text file as a single segment.
type TextDecoder struct{}

var _ Decoder = TextDecoder{}

func (TextDecoder) Decode(_ context.Context, path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		return nil, errNotUTF8
	}
	return []string{string(raw)}, nil
}
