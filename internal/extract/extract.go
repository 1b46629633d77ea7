// Package extract turns input files into ordered sequences of text blocks.
// Each extractor is a pure function from a file path to an
// ExtractedDocument; positional metadata captured here is what lets the
// reconstruction side re-emit the document with its original layout.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"doc-translator/internal/block"
	"doc-translator/internal/types"
)

// audioExtensions are the audio/video container formats routed to the
// transcription extractor.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
}

// DetectFormat maps a file extension to a document format.
func DetectFormat(path string) (types.DocumentFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return types.FormatPDF, nil
	case ext == ".docx" || ext == ".doc":
		return types.FormatDocx, nil
	case ext == ".pptx" || ext == ".ppt":
		return types.FormatPptx, nil
	case audioExtensions[ext]:
		return types.FormatAudio, nil
	default:
		return "", types.NewAppError(types.ErrInvalidInput,
			fmt.Sprintf("unsupported file format: %s", ext), nil)
	}
}

// SupportedExtensions returns the upload allow-list.
func SupportedExtensions() []string {
	exts := []string{".pdf", ".docx", ".doc", ".pptx", ".ppt"}
	for ext := range audioExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// Extractor routes files to format-specific extraction.
type Extractor struct {
	whisper *WhisperClient
}

// NewExtractor creates an Extractor. whisper may be nil when audio input
// is not needed (document-only callers).
func NewExtractor(whisper *WhisperClient) *Extractor {
	return &Extractor{whisper: whisper}
}

// Extract validates the input file and dispatches to the extractor for
// its format.
func (e *Extractor) Extract(path string, format types.DocumentFormat) (*block.ExtractedDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppError(types.ErrExtraction, "file not found: "+path, err)
		}
		return nil, types.NewAppError(types.ErrExtraction, "cannot access file: "+path, err)
	}
	if info.Size() == 0 {
		return nil, types.NewAppError(types.ErrExtraction, "file is empty: "+filepath.Base(path), nil)
	}

	switch format {
	case types.FormatPDF:
		return ExtractPDF(path)
	case types.FormatDocx:
		return ExtractDocx(path)
	case types.FormatPptx:
		return ExtractPptx(path)
	case types.FormatAudio:
		if e.whisper == nil {
			return nil, types.NewAppError(types.ErrConfig, "transcription service not configured", nil)
		}
		return e.whisper.ExtractAudio(path)
	default:
		return nil, types.NewAppError(types.ErrInvalidInput,
			fmt.Sprintf("unknown format: %s", format), nil)
	}
}
