package document

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DOCXDecoder reads word/document.xml as a single segment. Paragraphs are
// separated by a blank line, tabs and breaks inside runs are kept.
type DOCXDecoder struct{}

var _ Decoder = DOCXDecoder{}

func (DOCXDecoder) Decode(_ context.Context, path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	rc, err := openPart(&zr.Reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	text, err := wordText(rc)
	if err != nil {
		return nil, fmt.Errorf("read word/document.xml: %w", err)
	}
	return []string{text}, nil
}

// wordText walks the WordprocessingML body collecting run text in document
// order, tables included.
func wordText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		b      strings.Builder
		inRun  bool
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Space != nsWordML {
				continue
			}
			switch el.Name.Local {
			case "r":
				inRun = true
			case "t":
				inText = inRun
			case "tab":
				// w:tab also declares tab stops inside w:pPr
				if inRun {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if inRun {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if el.Name.Space != nsWordML {
				continue
			}
			switch el.Name.Local {
			case "r":
				inRun = false
			case "t":
				inText = false
			case "p":
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
