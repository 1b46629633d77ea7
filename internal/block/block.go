// Package block defines the canonical in-memory representation of a
// document's translatable units. Extractors produce Blocks, the translator
// maps block IDs to translated text, and reconstructors join the two by ID.
package block

import "doc-translator/internal/types"

// Block is the common surface shared by all format variants. Concrete
// variants form a closed set; reconstructors type-switch on them.
//
// Blocks are created once by extraction and are read-only afterwards.
type Block interface {
	// ID is unique within one ExtractedDocument and is the sole join key
	// between translation output and reconstruction input.
	ID() string
	// Text is the immutable source-language text.
	Text() string
	// Header reports whether the block is a title or heading.
	Header() bool
}

// BBox is an axis-aligned bounding box in top-left-origin page coordinates
// (y grows downward), matching what PDF extraction produces.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// PDFBlock is a paragraph extracted from a PDF page.
type PDFBlock struct {
	BlockID  string  `json:"block_id"`
	Source   string  `json:"text"`
	Page     int     `json:"page"` // 1-indexed
	Box      BBox    `json:"bbox"`
	FontSize float64 `json:"font_size"` // mean of member word sizes
	FontName string  `json:"font_name"` // most frequent member word font
	IsHeader bool    `json:"is_header"` // mean font size > 14pt
}

func (b *PDFBlock) ID() string   { return b.BlockID }
func (b *PDFBlock) Text() string { return b.Source }
func (b *PDFBlock) Header() bool { return b.IsHeader }

// DocxBlock is a paragraph or table cell from a Word document.
type DocxBlock struct {
	BlockID        string `json:"block_id"`
	Source         string `json:"text"`
	StyleName      string `json:"style_name"`
	ParagraphIndex int    `json:"paragraph_index"` // -1 for table cells
	TableCell      bool   `json:"is_table_cell"`
	TableIndex     int    `json:"table_index"` // -1 unless a table cell
	RowIndex       int    `json:"row_index"`
	ColIndex       int    `json:"col_index"`
	IsHeader       bool   `json:"is_header"` // style name starts with "Heading"
}

func (b *DocxBlock) ID() string   { return b.BlockID }
func (b *DocxBlock) Text() string { return b.Source }
func (b *DocxBlock) Header() bool { return b.IsHeader }

// PptxBlock is a paragraph inside a slide shape's text frame.
type PptxBlock struct {
	BlockID          string  `json:"block_id"`
	Source           string  `json:"text"`
	SlideIndex       int     `json:"slide_index"`
	ShapeIndex       int     `json:"shape_index"`
	ShapeName        string  `json:"shape_name"`
	ParagraphIndex   int     `json:"paragraph_index"`
	TitlePlaceholder bool    `json:"title_placeholder"`
	FontSize         float64 `json:"font_size"`
	IsHeader         bool    `json:"is_header"` // title placeholder or font size >= 24pt
}

func (b *PptxBlock) ID() string   { return b.BlockID }
func (b *PptxBlock) Text() string { return b.Source }
func (b *PptxBlock) Header() bool { return b.IsHeader }

// AudioBlock is one transcription segment.
type AudioBlock struct {
	BlockID string  `json:"block_id"`
	Source  string  `json:"text"`
	Start   float64 `json:"start_time"` // seconds
	End     float64 `json:"end_time"`   // seconds
	// Confidence carries the recognizer's no-speech probability. It is
	// informational only and never filters a segment.
	Confidence float64 `json:"confidence"`
}

func (b *AudioBlock) ID() string   { return b.BlockID }
func (b *AudioBlock) Text() string { return b.Source }
func (b *AudioBlock) Header() bool { return false }

// Duration returns the segment length in seconds.
func (b *AudioBlock) Duration() float64 { return b.End - b.Start }

// ExtractedDocument is a document with extracted blocks ready to translate.
// Blocks are in reading order; for PDF and audio that is visual/temporal
// order, not extraction order.
type ExtractedDocument struct {
	SourcePath string
	Format     types.DocumentFormat
	Blocks     []Block
	Metadata   map[string]string
}

// TranslationMap maps block_id to translated text. A missing key is a
// valid state: callers fall back to the block's source text.
type TranslationMap map[string]string

// Lookup returns the translation for id, or fallback when absent.
func (m TranslationMap) Lookup(id, fallback string) string {
	if t, ok := m[id]; ok {
		return t
	}
	return fallback
}
