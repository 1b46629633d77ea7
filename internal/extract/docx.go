package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"doc-translator/internal/block"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

const legacyDocHint = "the old binary .doc format is not supported; " +
	"convert the file to .docx first (Microsoft Word \"Save As\", or " +
	"soffice --convert-to docx yourfile.doc)"

const legacyPptHint = "the old binary .ppt format is not supported; " +
	"convert the file to .pptx first (PowerPoint \"Save As\", or " +
	"soffice --convert-to pptx yourfile.ppt)"

// readArchivePart opens an OOXML container and returns the named part.
// A broken zip and a zip missing the part are reported separately so the
// caller can tell a corrupt file from a mislabeled one.
func readArchivePart(path, part string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrExtraction,
			"file is not a valid Office document",
			fmt.Sprintf("%s is corrupt or not an Office Open XML container", filepath.Base(path)),
			err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, types.NewAppError(types.ErrExtraction, "cannot read "+part, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, types.NewAppErrorWithDetails(types.ErrExtraction,
		"file is not a valid Office document",
		fmt.Sprintf("%s does not contain %s; it may be a different format with a wrong extension",
			filepath.Base(path), part),
		nil)
}

// ExtractDocx extracts one block per non-empty body paragraph and one per
// non-empty table cell from a Word document.
func ExtractDocx(path string) (*block.ExtractedDocument, error) {
	if strings.EqualFold(filepath.Ext(path), ".doc") {
		return nil, types.NewAppErrorWithDetails(types.ErrExtraction,
			"legacy Word format", legacyDocHint, nil)
	}

	data, err := readArchivePart(path, "word/document.xml")
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "cannot parse word/document.xml", err)
	}

	body := doc.FindElement("//w:body")
	if body == nil {
		return nil, types.NewAppError(types.ErrExtraction, "document has no body element", nil)
	}

	var blocks []block.Block

	// Body-level paragraphs. The paragraph index counts w:p elements that
	// are direct children of w:body, matching the lookup the rebuilder does.
	paraIdx := -1
	tblIdx := -1
	for _, child := range body.ChildElements() {
		switch {
		case child.Space == "w" && child.Tag == "p":
			paraIdx++
			text := paragraphText(child)
			if text == "" {
				continue
			}
			style := paragraphStyle(child)
			blocks = append(blocks, &block.DocxBlock{
				BlockID:        fmt.Sprintf("para_%d", paraIdx),
				Source:         text,
				StyleName:      style,
				ParagraphIndex: paraIdx,
				TableCell:      false,
				TableIndex:     -1,
				RowIndex:       -1,
				ColIndex:       -1,
				IsHeader:       strings.HasPrefix(style, "Heading"),
			})
		case child.Space == "w" && child.Tag == "tbl":
			tblIdx++
			for rowIdx, row := range child.SelectElements("w:tr") {
				for colIdx, cell := range row.SelectElements("w:tc") {
					text := cellText(cell)
					if text == "" {
						continue
					}
					blocks = append(blocks, &block.DocxBlock{
						BlockID:        fmt.Sprintf("tbl%d_r%d_c%d", tblIdx, rowIdx, colIdx),
						Source:         text,
						StyleName:      "Normal",
						ParagraphIndex: -1,
						TableCell:      true,
						TableIndex:     tblIdx,
						RowIndex:       rowIdx,
						ColIndex:       colIdx,
						IsHeader:       false,
					})
				}
			}
		}
	}

	logger.Info("DOCX extraction complete",
		logger.String("file", path),
		logger.Int("blocks", len(blocks)))

	return &block.ExtractedDocument{
		SourcePath: path,
		Format:     types.FormatDocx,
		Blocks:     blocks,
		Metadata:   map[string]string{},
	}, nil
}

// paragraphText joins all run text within a paragraph.
func paragraphText(p *etree.Element) string {
	var sb strings.Builder
	for _, t := range p.FindElements(".//w:t") {
		sb.WriteString(t.Text())
	}
	return strings.TrimSpace(sb.String())
}

// paragraphStyle returns the paragraph's style id ("Normal" when unset).
func paragraphStyle(p *etree.Element) string {
	if pPr := p.SelectElement("w:pPr"); pPr != nil {
		if style := pPr.SelectElement("w:pStyle"); style != nil {
			if v := style.SelectAttrValue("w:val", ""); v != "" {
				return v
			}
		}
	}
	return "Normal"
}

// cellText joins a table cell's paragraph texts with newlines.
func cellText(tc *etree.Element) string {
	var parts []string
	for _, p := range tc.SelectElements("w:p") {
		if t := paragraphText(p); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
