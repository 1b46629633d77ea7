package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"doc-translator/internal/types"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    types.DocumentFormat
		wantErr bool
	}{
		{"report.pdf", types.FormatPDF, false},
		{"REPORT.PDF", types.FormatPDF, false},
		{"notes.docx", types.FormatDocx, false},
		{"legacy.doc", types.FormatDocx, false},
		{"deck.pptx", types.FormatPptx, false},
		{"legacy.ppt", types.FormatPptx, false},
		{"talk.mp3", types.FormatAudio, false},
		{"clip.mp4", types.FormatAudio, false},
		{"voice.wav", types.FormatAudio, false},
		{"voice.m4a", types.FormatAudio, false},
		{"song.flac", types.FormatAudio, false},
		{"data.csv", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.path)
				}
				var appErr *types.AppError
				if !errors.As(err, &appErr) || appErr.Code != types.ErrInvalidInput {
					t.Errorf("expected INVALID_INPUT error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat(%s) failed: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%s) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestExtractRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(nil)
	_, err := e.Extract(path, types.FormatPDF)
	if err == nil {
		t.Fatal("expected error for empty file")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrExtraction {
		t.Errorf("expected EXTRACTION_ERROR, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	e := NewExtractor(nil)
	if _, err := e.Extract(filepath.Join(t.TempDir(), "nope.pdf"), types.FormatPDF); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExtractAudioWithoutWhisper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(nil)
	_, err := e.Extract(path, types.FormatAudio)
	if err == nil {
		t.Fatal("expected error when transcription is not configured")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrConfig {
		t.Errorf("expected CONFIG_ERROR, got %v", err)
	}
}

func TestSupportedExtensionsIncludesAllFamilies(t *testing.T) {
	exts := make(map[string]bool)
	for _, e := range SupportedExtensions() {
		exts[e] = true
	}
	for _, want := range []string{".pdf", ".docx", ".pptx", ".mp3", ".wav"} {
		if !exts[want] {
			t.Errorf("supported extensions missing %s", want)
		}
	}
}
