package reconstruct

import (
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"doc-translator/internal/block"
	"doc-translator/internal/logger"
)

const (
	// a4Width and a4Height are the fallback page size in points when the
	// original page geometry cannot be recovered.
	a4Width  = 595.0
	a4Height = 842.0

	// minFontSize floors the rendered font size.
	minFontSize = 10.0
	// leadingFactor scales font size into line leading.
	leadingFactor = 1.2
)

// RenderOrigin converts a block's top-left-origin bounding box into the
// bottom-left-origin anchor used for rendering: the box's left edge and its
// bottom edge measured from the page bottom.
func RenderOrigin(box block.BBox, pageHeight float64) (x, y float64) {
	return box.X0, pageHeight - box.Y1
}

// RebuildPDF renders a new document with one page per original page at the
// original size and each block's translated text laid out at the block's
// position. Text wraps to the block's width; a translation longer than the
// source may overflow the original box vertically.
func RebuildPDF(doc *block.ExtractedDocument, translations block.TranslationMap, outputPath string) (string, error) {
	dims := pageSizes(doc.SourcePath)

	pages := make(map[int][]*block.PDFBlock)
	maxPage := len(dims)
	for _, b := range doc.Blocks {
		pb, ok := b.(*block.PDFBlock)
		if !ok {
			continue
		}
		pages[pb.Page] = append(pages[pb.Page], pb)
		if pb.Page > maxPage {
			maxPage = pb.Page
		}
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	latin := pdf.UnicodeTranslatorFromDescriptor("")

	for pageNum := 1; pageNum <= maxPage; pageNum++ {
		pageW, pageH := a4Width, a4Height
		if pageNum-1 < len(dims) {
			pageW, pageH = dims[pageNum-1][0], dims[pageNum-1][1]
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pageW, Ht: pageH})

		blocks := pages[pageNum]
		// Top-to-bottom then left-to-right approximates the original
		// reading order; no flow metadata survives extraction.
		sort.Slice(blocks, func(i, j int) bool {
			if blocks[i].Box.Y0 != blocks[j].Box.Y0 {
				return blocks[i].Box.Y0 < blocks[j].Box.Y0
			}
			return blocks[i].Box.X0 < blocks[j].Box.X0
		})

		for _, pb := range blocks {
			text := strings.TrimSpace(translations.Lookup(pb.BlockID, pb.Source))
			if text == "" {
				continue
			}

			size := pb.FontSize
			if size < minFontSize {
				size = minFontSize
			}
			style := ""
			if pb.IsHeader {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, size)
			leading := size * leadingFactor

			width := pb.Box.Width()
			if width <= 0 {
				width = pageW - pb.Box.X0
			}

			encoded := latin(text)
			lines := wrappedLineCount(pdf, encoded, width)
			blockHeight := float64(lines) * leading

			// Anchor the wrapped text so its bottom edge sits on the
			// original box's bottom edge.
			x, renderY := RenderOrigin(pb.Box, pageH)
			top := pageH - renderY - blockHeight
			if top < 0 {
				top = 0
			}

			pdf.SetXY(x, top)
			pdf.MultiCell(width, leading, encoded, "", "L", false)
		}
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", err
	}

	logger.Info("PDF rebuilt",
		logger.String("output", outputPath),
		logger.Int("pages", maxPage))
	return outputPath, nil
}

// wrappedLineCount counts the lines text occupies when wrapped to width
// with the current font, honoring explicit newlines.
func wrappedLineCount(pdf *gofpdf.Fpdf, text string, width float64) int {
	n := 0
	for _, seg := range strings.Split(text, "\n") {
		if seg == "" {
			n++
			continue
		}
		wrapped := pdf.SplitText(seg, width)
		if len(wrapped) == 0 {
			n++
			continue
		}
		n += len(wrapped)
	}
	return n
}

// pageSizes recovers per-page (width, height) from the original file. Any
// failure yields no dims, which makes every page fall back to A4.
func pageSizes(path string) [][2]float64 {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		logger.Warn("cannot re-read original PDF, defaulting page size to A4",
			logger.String("file", path), logger.Err(err))
		return nil
	}
	pageDims, err := ctx.PageDims()
	if err != nil {
		logger.Warn("cannot read page sizes, defaulting to A4", logger.Err(err))
		return nil
	}
	dims := make([][2]float64, len(pageDims))
	for i, d := range pageDims {
		dims[i] = [2]float64{d.Width, d.Height}
	}
	return dims
}
