package reconstruct

import (
	"os"
	"path/filepath"
	"testing"

	"doc-translator/internal/block"
	"doc-translator/internal/types"
)

func TestFormatSRTTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{125.4, "00:02:05,400"},
		{1.5, "00:00:01,500"},
		{59.999, "00:00:59,999"},
		{3661.25, "01:01:01,250"},
		{-1, "00:00:00,000"},
	}

	for _, tt := range tests {
		if got := FormatSRTTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatSRTTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func audioDocument(path string) *block.ExtractedDocument {
	return &block.ExtractedDocument{
		SourcePath: path,
		Format:     types.FormatAudio,
		Blocks: []block.Block{
			&block.AudioBlock{BlockID: "seg_0", Source: "Hello there.", Start: 0, End: 2.5},
			&block.AudioBlock{BlockID: "seg_1", Source: "How are you?", Start: 2.5, End: 5},
		},
	}
}

func TestRebuildSRTGolden(t *testing.T) {
	doc := audioDocument("in.wav")
	translations := block.TranslationMap{
		"seg_0": "Bonjour.",
		"seg_1": "Comment allez-vous ?",
	}

	out := filepath.Join(t.TempDir(), "out.srt")
	got, err := RebuildSRT(doc, translations, out)
	if err != nil {
		t.Fatalf("RebuildSRT failed: %v", err)
	}
	if got != out {
		t.Errorf("returned path %q, want %q", got, out)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("cannot read output: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:02,500\nBonjour.\n\n" +
		"2\n00:00:02,500 --> 00:00:05,000\nComment allez-vous ?\n\n"
	if string(data) != want {
		t.Errorf("output mismatch:\ngot:\n%q\nwant:\n%q", string(data), want)
	}
}

func TestRebuildSRTFallsBackToSource(t *testing.T) {
	doc := audioDocument("in.wav")

	out := filepath.Join(t.TempDir(), "out.srt")
	if _, err := RebuildSRT(doc, block.TranslationMap{}, out); err != nil {
		t.Fatalf("RebuildSRT failed: %v", err)
	}

	data, _ := os.ReadFile(out)
	want := "1\n00:00:00,000 --> 00:00:02,500\nHello there.\n\n" +
		"2\n00:00:02,500 --> 00:00:05,000\nHow are you?\n\n"
	if string(data) != want {
		t.Errorf("empty-translation output should equal source text:\ngot:\n%q\nwant:\n%q", string(data), want)
	}
}
