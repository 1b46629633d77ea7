package extract

import (
	"fmt"
	"sort"
	"strings"

	ledongthucpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"doc-translator/internal/block"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

const (
	// Words whose vertical centers differ by less than this belong to the
	// same line.
	lineMergeTolerance = 5.0
	// A vertical gap larger than this between consecutive lines starts a
	// new paragraph.
	paragraphGapThreshold = 15.0
	// Blocks whose mean font size exceeds this are treated as headers.
	headerFontSize = 14.0
	// A horizontal gap wider than this fraction of the font size between
	// consecutive characters ends the current word.
	wordGapFactor = 0.3
)

// word is one positioned text fragment in top-left-origin page coordinates.
type word struct {
	text     string
	x0, y0   float64
	x1, y1   float64
	fontSize float64
	fontName string
}

func (w word) centerY() float64 { return (w.y0 + w.y1) / 2 }

// ExtractPDF extracts text blocks from a PDF. Words are grouped into lines
// by vertical center proximity, lines into paragraphs by vertical gap; each
// paragraph becomes one block whose bbox is the union of its words' boxes.
func ExtractPDF(path string) (*block.ExtractedDocument, error) {
	heights, err := pageHeights(path)
	if err != nil {
		return nil, err
	}

	f, r, err := ledongthucpdf.Open(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrExtraction,
			"cannot open PDF file (corrupt or not a PDF)", err)
	}
	defer f.Close()

	var blocks []block.Block
	totalPages := r.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageHeight := 842.0 // A4 fallback
		if pageNum-1 < len(heights) {
			pageHeight = heights[pageNum-1]
		}

		words := pageWords(page, pageHeight)
		if len(words) == 0 {
			continue
		}

		for idx, para := range groupParagraphs(words) {
			b := paragraphBlock(para, pageNum, idx)
			if b != nil {
				blocks = append(blocks, b)
			}
		}
	}

	logger.Info("PDF extraction complete",
		logger.String("file", path),
		logger.Int("pages", totalPages),
		logger.Int("blocks", len(blocks)))

	return &block.ExtractedDocument{
		SourcePath: path,
		Format:     types.FormatPDF,
		Blocks:     blocks,
		Metadata:   map[string]string{},
	}, nil
}

// pageHeights reads per-page heights via pdfcpu, which validates the
// container in the process.
func pageHeights(path string) ([]float64, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrExtraction,
			"cannot read PDF file (corrupt or not a PDF)", err)
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "cannot read PDF page sizes", err)
	}
	heights := make([]float64, len(dims))
	for i, d := range dims {
		heights[i] = d.Height
	}
	return heights, nil
}

// pageWords assembles the page's text fragments into words in
// top-left-origin coordinates, sorted into visual order (top to bottom,
// left to right).
func pageWords(page ledongthucpdf.Page, pageHeight float64) []word {
	words := assembleWords(page.Content().Text, pageHeight)

	sort.SliceStable(words, func(i, j int) bool {
		if abs(words[i].centerY()-words[j].centerY()) < lineMergeTolerance {
			return words[i].x0 < words[j].x0
		}
		return words[i].centerY() < words[j].centerY()
	})
	return words
}

// assembleWords joins the library's per-character fragments back into
// words. A whitespace fragment, a baseline change, or a horizontal gap
// wider than wordGapFactor of the font size ends the word being built.
// The library reports baselines in bottom-left-origin coordinates; boxes
// are flipped to top-left origin.
func assembleWords(fragments []ledongthucpdf.Text, pageHeight float64) []word {
	var words []word
	var sb strings.Builder
	var cur word
	var prevEnd float64
	open := false

	flush := func() {
		if !open {
			return
		}
		cur.text = sb.String()
		if strings.TrimSpace(cur.text) != "" {
			words = append(words, cur)
		}
		sb.Reset()
		open = false
	}

	for _, t := range fragments {
		if strings.TrimSpace(t.S) == "" {
			flush()
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = 12.0
		}

		y0 := pageHeight - (t.Y + size)
		y1 := pageHeight - t.Y

		if open {
			gap := t.X - prevEnd
			if abs(y1-cur.y1) >= lineMergeTolerance || gap > size*wordGapFactor || gap < -size {
				flush()
			}
		}

		if !open {
			cur = word{
				x0:       t.X,
				y0:       y0,
				x1:       t.X + t.W,
				y1:       y1,
				fontSize: size,
				fontName: t.Font,
			}
			open = true
		} else {
			if y0 < cur.y0 {
				cur.y0 = y0
			}
			if y1 > cur.y1 {
				cur.y1 = y1
			}
			if t.X+t.W > cur.x1 {
				cur.x1 = t.X + t.W
			}
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	flush()
	return words
}

// groupParagraphs groups visually-ordered words into lines, then lines
// into paragraphs.
func groupParagraphs(words []word) [][]word {
	var lines [][]word
	var currentLine []word
	currentY := 0.0

	for _, w := range words {
		if len(currentLine) == 0 {
			currentLine = []word{w}
			currentY = w.centerY()
			continue
		}
		if abs(w.centerY()-currentY) < lineMergeTolerance {
			currentLine = append(currentLine, w)
		} else {
			lines = append(lines, currentLine)
			currentLine = []word{w}
			currentY = w.centerY()
		}
	}
	if len(currentLine) > 0 {
		lines = append(lines, currentLine)
	}

	var paragraphs [][]word
	var current []word
	prevBottom := 0.0
	first := true

	for _, line := range lines {
		lineTop, lineBottom := line[0].y0, line[0].y1
		for _, w := range line[1:] {
			if w.y0 < lineTop {
				lineTop = w.y0
			}
			if w.y1 > lineBottom {
				lineBottom = w.y1
			}
		}

		if first {
			current = line
			first = false
		} else if lineTop-prevBottom > paragraphGapThreshold {
			paragraphs = append(paragraphs, current)
			current = line
		} else {
			current = append(current, line...)
		}
		prevBottom = lineBottom
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}
	return paragraphs
}

// paragraphBlock builds one block from a paragraph's words: text joined in
// visual order, bbox as the union of word boxes, mean font size, and the
// most frequent font name.
func paragraphBlock(words []word, pageNum, index int) block.Block {
	var sb strings.Builder
	box := block.BBox{X0: words[0].x0, Y0: words[0].y0, X1: words[0].x1, Y1: words[0].y1}
	totalSize := 0.0
	fontCounts := map[string]int{}

	for i, w := range words {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(w.text)

		if w.x0 < box.X0 {
			box.X0 = w.x0
		}
		if w.y0 < box.Y0 {
			box.Y0 = w.y0
		}
		if w.x1 > box.X1 {
			box.X1 = w.x1
		}
		if w.y1 > box.Y1 {
			box.Y1 = w.y1
		}
		totalSize += w.fontSize
		fontCounts[w.fontName]++
	}

	text := strings.Join(strings.Fields(sb.String()), " ")
	if text == "" {
		return nil
	}

	avgSize := totalSize / float64(len(words))
	fontName := "Helvetica"
	best := 0
	for name, n := range fontCounts {
		if n > best && name != "" {
			fontName, best = name, n
		}
	}

	return &block.PDFBlock{
		BlockID:  blockID(pageNum, index),
		Source:   text,
		Page:     pageNum,
		Box:      box,
		FontSize: avgSize,
		FontName: fontName,
		IsHeader: avgSize > headerFontSize,
	}
}

func blockID(page, index int) string {
	return fmt.Sprintf("p%d_b%d", page, index)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
