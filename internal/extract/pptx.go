package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"doc-translator/internal/block"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// Blocks from runs at or above this size count as headers even outside a
// title placeholder.
const headerRunSize = 24.0

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// ExtractPptx extracts one block per non-empty paragraph inside any shape
// text frame, across slides in presentation order.
func ExtractPptx(path string) (*block.ExtractedDocument, error) {
	if strings.EqualFold(filepath.Ext(path), ".ppt") {
		return nil, types.NewAppErrorWithDetails(types.ErrExtraction,
			"legacy PowerPoint format", legacyPptHint, nil)
	}

	// Presence check distinguishes a corrupt container from a mislabeled one.
	if _, err := readArchivePart(path, "ppt/presentation.xml"); err != nil {
		return nil, err
	}

	slides, err := slideParts(path)
	if err != nil {
		return nil, err
	}

	var blocks []block.Block
	for slideIdx, data := range slides {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			return nil, types.NewAppError(types.ErrExtraction,
				fmt.Sprintf("cannot parse slide %d", slideIdx+1), err)
		}

		spTree := doc.FindElement("//p:spTree")
		if spTree == nil {
			continue
		}

		for shapeIdx, sp := range spTree.SelectElements("p:sp") {
			txBody := sp.FindElement("p:txBody")
			if txBody == nil {
				continue
			}

			isTitle := titlePlaceholder(sp)
			shapeName := shapeName(sp)

			for paraIdx, para := range txBody.SelectElements("a:p") {
				text := slideParagraphText(para)
				if text == "" {
					continue
				}
				size := runFontSize(para)
				blocks = append(blocks, &block.PptxBlock{
					BlockID:          fmt.Sprintf("s%d_sh%d_p%d", slideIdx, shapeIdx, paraIdx),
					Source:           text,
					SlideIndex:       slideIdx,
					ShapeIndex:       shapeIdx,
					ShapeName:        shapeName,
					ParagraphIndex:   paraIdx,
					TitlePlaceholder: isTitle,
					FontSize:         size,
					IsHeader:         isTitle || size >= headerRunSize,
				})
			}
		}
	}

	logger.Info("PPTX extraction complete",
		logger.String("file", path),
		logger.Int("slides", len(slides)),
		logger.Int("blocks", len(blocks)))

	return &block.ExtractedDocument{
		SourcePath: path,
		Format:     types.FormatPptx,
		Blocks:     blocks,
		Metadata:   map[string]string{},
	}, nil
}

// slideParts returns slide XML payloads ordered by slide number.
func slideParts(path string) ([][]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrExtraction,
			"file is not a valid PowerPoint document", err)
	}
	defer zr.Close()

	type slidePart struct {
		num  int
		data []byte
	}
	var parts []slidePart

	for _, f := range zr.File {
		m := slidePartPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		rc, err := f.Open()
		if err != nil {
			return nil, types.NewAppError(types.ErrExtraction, "cannot read "+f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, types.NewAppError(types.ErrExtraction, "cannot read "+f.Name, err)
		}
		parts = append(parts, slidePart{num: num, data: data})
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].num < parts[j].num })

	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = p.data
	}
	return out, nil
}

// titlePlaceholder reports whether a shape is a title or centered-title
// placeholder.
func titlePlaceholder(sp *etree.Element) bool {
	ph := sp.FindElement("p:nvSpPr/p:nvPr/p:ph")
	if ph == nil {
		return false
	}
	t := ph.SelectAttrValue("type", "")
	return t == "title" || t == "ctrTitle"
}

func shapeName(sp *etree.Element) string {
	if cNvPr := sp.FindElement("p:nvSpPr/p:cNvPr"); cNvPr != nil {
		return cNvPr.SelectAttrValue("name", "")
	}
	return ""
}

// slideParagraphText joins all run text within a slide paragraph.
func slideParagraphText(p *etree.Element) string {
	var sb strings.Builder
	for _, t := range p.FindElements(".//a:t") {
		sb.WriteString(t.Text())
	}
	return strings.TrimSpace(sb.String())
}

// runFontSize returns the first run's font size in points (12 when unset;
// the attribute is stored in hundredths of a point).
func runFontSize(p *etree.Element) float64 {
	for _, rPr := range p.FindElements(".//a:rPr") {
		if sz := rPr.SelectAttrValue("sz", ""); sz != "" {
			if v, err := strconv.ParseFloat(sz, 64); err == nil {
				return v / 100.0
			}
		}
	}
	return 12.0
}
