package reconstruct

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"doc-translator/internal/block"
)

type fakeSynth struct {
	available bool
	failOn    map[string]bool
	rate      int
	spoken    []string
}

func (f *fakeSynth) Available() bool { return f.available }

func (f *fakeSynth) Synthesize(ctx context.Context, text, language string) (*audio.IntBuffer, error) {
	f.spoken = append(f.spoken, text)
	if f.failOn[text] {
		return nil, errors.New("synthesis backend error")
	}
	rate := f.rate
	if rate == 0 {
		rate = synthSampleRate
	}
	data := make([]int, rate) // one second of non-silence
	for i := range data {
		data[i] = 1000
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}, nil
}

func TestRebuildAudioUnavailableFallsBackToSRT(t *testing.T) {
	doc := audioDocument("in.wav")

	out := filepath.Join(t.TempDir(), "out.wav")
	got, err := RebuildAudio(context.Background(), doc, block.TranslationMap{}, out, "fr", nil)
	if err != nil {
		t.Fatalf("RebuildAudio failed: %v", err)
	}
	if !strings.HasSuffix(got, ".srt") {
		t.Errorf("expected .srt fallback path, got %q", got)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("fallback subtitle file missing: %v", err)
	}
}

func TestRebuildAudioSRTTargetSkipsSynthesis(t *testing.T) {
	doc := audioDocument("in.wav")
	synth := &fakeSynth{available: true}

	out := filepath.Join(t.TempDir(), "out.srt")
	got, err := RebuildAudio(context.Background(), doc, block.TranslationMap{
		"seg_0": "Bonjour.",
	}, out, "fr", synth)
	if err != nil {
		t.Fatalf("RebuildAudio failed: %v", err)
	}
	if got != out {
		t.Errorf("returned path %q, want the .srt target %q", got, out)
	}
	if len(synth.spoken) != 0 {
		t.Errorf("synthesizer was called for a subtitle target: %v", synth.spoken)
	}

	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("cannot read output: %v", err)
	}
	if !strings.Contains(string(data), "-->") {
		t.Error("output is not a subtitle file")
	}
}

func TestRebuildAudioBlankTranslationStaysSilent(t *testing.T) {
	doc := audioDocument("in.wav") // two segments, 0-2.5s and 2.5-5s
	synth := &fakeSynth{available: true}

	out := filepath.Join(t.TempDir(), "out.wav")
	_, err := RebuildAudio(context.Background(), doc, block.TranslationMap{
		"seg_0": "Bonjour.",
		"seg_1": "   ",
	}, out, "fr", synth)
	if err != nil {
		t.Fatalf("RebuildAudio failed: %v", err)
	}

	if len(synth.spoken) != 1 || synth.spoken[0] != "Bonjour." {
		t.Errorf("synthesizer calls = %v, want only the non-blank segment", synth.spoken)
	}

	f, _ := os.Open(out)
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("cannot decode output: %v", err)
	}
	for i := int(3.0 * synthSampleRate); i < int(3.1*synthSampleRate); i++ {
		if buf.Data[i] != 0 {
			t.Fatal("blank segment should stay silence")
		}
	}
}

func TestRebuildAudioSynthesizesTimeline(t *testing.T) {
	doc := audioDocument("in.wav") // two segments, 0-2.5s and 2.5-5s

	out := filepath.Join(t.TempDir(), "out.wav")
	got, err := RebuildAudio(context.Background(), doc, block.TranslationMap{
		"seg_0": "Bonjour.",
		"seg_1": "Comment allez-vous ?",
	}, out, "fr", &fakeSynth{available: true})
	if err != nil {
		t.Fatalf("RebuildAudio failed: %v", err)
	}
	if got != out {
		t.Fatalf("returned path %q, want %q", got, out)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("cannot open output: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("output is not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("cannot decode output: %v", err)
	}

	// Timeline length covers through the last segment's end (5s).
	wantSamples := int(5.0 * synthSampleRate)
	if len(buf.Data) != wantSamples {
		t.Errorf("timeline length = %d samples, want %d", len(buf.Data), wantSamples)
	}

	// The first second carries the synthesized clip, the gap after the
	// one-second clip within segment 0 is silence.
	if buf.Data[synthSampleRate/2] == 0 {
		t.Error("expected synthesized audio at 0.5s")
	}
	if buf.Data[2*synthSampleRate] != 0 {
		t.Error("expected silence at 2.0s (past the clip, inside segment 0)")
	}
}

func TestRebuildAudioBlockFailureInsertsSilence(t *testing.T) {
	doc := audioDocument("in.wav")

	out := filepath.Join(t.TempDir(), "out.wav")
	_, err := RebuildAudio(context.Background(), doc, block.TranslationMap{
		"seg_0": "Bonjour.",
		"seg_1": "Comment allez-vous ?",
	}, out, "fr", &fakeSynth{available: true, failOn: map[string]bool{"Comment allez-vous ?": true}})
	if err != nil {
		t.Fatalf("single block failure should not fail the rebuild: %v", err)
	}

	f, _ := os.Open(out)
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("cannot decode output: %v", err)
	}

	// Segment 1 (2.5s-5s) is silence, segment 0 is not.
	if buf.Data[synthSampleRate/2] == 0 {
		t.Error("segment 0 should carry audio")
	}
	for i := int(3.0 * synthSampleRate); i < int(3.1*synthSampleRate); i++ {
		if buf.Data[i] != 0 {
			t.Fatal("failed segment should be silence")
		}
	}
}

func TestResample(t *testing.T) {
	tests := []struct {
		name    string
		in      []int
		from    int
		to      int
		wantLen int
	}{
		{"identity", []int{1, 2, 3}, 22050, 22050, 3},
		{"downsample halves", make([]int, 44100), 44100, 22050, 22050},
		{"upsample doubles", make([]int, 11025), 11025, 22050, 22050},
		{"empty", nil, 44100, 22050, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resample(tt.in, tt.from, tt.to)
			if len(got) != tt.wantLen {
				t.Errorf("resample length = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestFitClip(t *testing.T) {
	trimmed := fitClip([]int{1, 2, 3, 4}, 2)
	if len(trimmed) != 2 || trimmed[0] != 1 || trimmed[1] != 2 {
		t.Errorf("trim produced %v", trimmed)
	}

	padded := fitClip([]int{5, 6}, 4)
	if len(padded) != 4 || padded[2] != 0 || padded[3] != 0 {
		t.Errorf("pad produced %v", padded)
	}
}

func TestForceExt(t *testing.T) {
	if got := forceExt("/tmp/audio_fr.mp3", ".srt"); got != "/tmp/audio_fr.srt" {
		t.Errorf("forceExt = %q", got)
	}
	if got := forceExt("noext", ".srt"); got != "noext.srt" {
		t.Errorf("forceExt = %q", got)
	}
}
