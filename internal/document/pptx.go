package document

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

// PPTXMode selects how much of a presentation is read.
type PPTXMode string

const (
	// PPTXLightweight reads top-level text shapes only, one segment overall.
	PPTXLightweight PPTXMode = "lightweight"
	// PPTXFull reads every paragraph on a slide, groups and tables included,
	// one segment per non-empty slide.
	PPTXFull PPTXMode = "full"
)

// PPTXDecoder extracts slide text from a PowerPoint package.
type PPTXDecoder struct {
	Mode PPTXMode
}

var _ Decoder = PPTXDecoder{}

func (d PPTXDecoder) Decode(ctx context.Context, p string) ([]string, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer zr.Close()

	slides, err := slideOrder(&zr.Reader)
	if err != nil {
		return nil, err
	}

	var units []string
	for _, name := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		texts, err := d.readSlide(&zr.Reader, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		units = append(units, texts...)
	}

	if d.Mode == PPTXFull {
		return units, nil
	}
	return []string{strings.TrimSpace(strings.Join(units, "\n"))}, nil
}

func (d PPTXDecoder) readSlide(zr *zip.Reader, name string) ([]string, error) {
	rc, err := openPart(zr, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return slideText(rc, d.Mode == PPTXFull)
}

type presentationXML struct {
	SlideIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

// slideOrder lists slide parts in presentation order. Packages without a
// readable presentation.xml fall back to slide number order.
func slideOrder(zr *zip.Reader) ([]string, error) {
	const presentation = "ppt/presentation.xml"
	if !hasPart(zr, presentation) {
		return numberedSlides(zr)
	}

	rc, err := openPart(zr, presentation)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var pres presentationXML
	if err := xml.NewDecoder(rc).Decode(&pres); err != nil {
		return nil, fmt.Errorf("decode %s: %w", presentation, err)
	}
	rels, err := readRels(zr, presentation)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(pres.SlideIDs))
	for _, s := range pres.SlideIDs {
		target, ok := rels[s.RID]
		if !ok {
			return nil, fmt.Errorf("slide relationship %q not found", s.RID)
		}
		out = append(out, target)
	}
	return out, nil
}

func numberedSlides(zr *zip.Reader) ([]string, error) {
	type slide struct {
		name string
		n    int
	}
	var slides []slide
	for _, f := range zr.File {
		dir, file := path.Split(f.Name)
		if dir != "ppt/slides/" || !strings.HasPrefix(file, "slide") || !strings.HasSuffix(file, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(file, "slide"), ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{name: f.Name, n: n})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	out := make([]string, len(slides))
	for i, s := range slides {
		out[i] = s.name
	}
	return out, nil
}

// textUnit accumulates the paragraphs of one shape (or one slide).
type textUnit struct {
	b     strings.Builder
	paras int
}

func (u *textUnit) startParagraph() {
	if u.paras > 0 {
		u.b.WriteByte('\n')
	}
	u.paras++
}

// slideText returns the text units of a slide part. With wholeSlide the
// entire common slide data is one unit; otherwise each top-level p:sp is a
// unit and everything else (pictures, tables, groups) is skipped. Empty units
// are dropped.
func slideText(r io.Reader, wholeSlide bool) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		stack     []xml.Name
		unit      *textUnit
		unitDepth int
		inText    bool
		out       []string
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if unit == nil && opensUnit(stack, el.Name, wholeSlide) {
				unit = &textUnit{}
				unitDepth = len(stack)
			}
			stack = append(stack, el.Name)
			if unit == nil || el.Name.Space != nsDrawingML {
				continue
			}
			switch el.Name.Local {
			case "p":
				unit.startParagraph()
			case "t":
				inText = true
			case "br":
				unit.b.WriteByte('\n')
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if el.Name.Space == nsDrawingML && el.Name.Local == "t" {
				inText = false
			}
			if unit != nil && len(stack) == unitDepth {
				if s := unit.b.String(); strings.TrimSpace(s) != "" {
					out = append(out, s)
				}
				unit = nil
			}
		case xml.CharData:
			if unit != nil && inText {
				unit.b.Write(el)
			}
		}
	}
	return out, nil
}

func opensUnit(stack []xml.Name, name xml.Name, wholeSlide bool) bool {
	if name.Space != nsPresentation {
		return false
	}
	if wholeSlide {
		return name.Local == "cSld"
	}
	n := len(stack)
	return name.Local == "sp" && n >= 2 &&
		stack[n-1].Local == "spTree" && stack[n-2].Local == "cSld"
}
