package reconstruct

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"doc-translator/internal/block"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// synthSampleRate is the working sample rate every synthesized clip is
// resampled to before timeline placement.
const synthSampleRate = 22050

// Synthesizer turns text into a mono waveform, or is unavailable.
type Synthesizer interface {
	Available() bool
	Synthesize(ctx context.Context, text, language string) (*audio.IntBuffer, error)
}

// RebuildAudio produces translated audio when a synthesizer is available,
// otherwise a subtitle file with the extension forced to .srt. A .srt
// output target always selects subtitle mode, synthesizer or not. Any
// top-level synthesis failure also falls back to subtitles; a single
// block's failure only silences that block's slot in the timeline.
func RebuildAudio(ctx context.Context, doc *block.ExtractedDocument, translations block.TranslationMap, outputPath, language string, synth Synthesizer) (string, error) {
	if strings.EqualFold(filepath.Ext(outputPath), ".srt") {
		return RebuildSRT(doc, translations, outputPath)
	}
	if synth == nil || !synth.Available() {
		logger.Warn("speech synthesis unavailable, producing subtitles instead")
		return RebuildSRT(doc, translations, forceExt(outputPath, ".srt"))
	}

	out, err := synthesizeTimeline(ctx, doc, translations, outputPath, language, synth)
	if err != nil {
		logger.Warn("speech synthesis failed, producing subtitles instead",
			logger.Err(err))
		return RebuildSRT(doc, translations, forceExt(outputPath, ".srt"))
	}
	return out, nil
}

// synthesizeTimeline speaks every block's translation and places the clips
// on a single silent timeline at their original start offsets. Later
// blocks may overwrite overlapping regions of earlier ones.
func synthesizeTimeline(ctx context.Context, doc *block.ExtractedDocument, translations block.TranslationMap, outputPath, language string, synth Synthesizer) (string, error) {
	var segments []*block.AudioBlock
	totalSeconds := 0.0
	for _, b := range doc.Blocks {
		ab, ok := b.(*block.AudioBlock)
		if !ok {
			continue
		}
		segments = append(segments, ab)
		if ab.End > totalSeconds {
			totalSeconds = ab.End
		}
	}
	if len(segments) == 0 {
		return "", types.NewAppError(types.ErrReconstruction, "no audio segments to synthesize", nil)
	}

	timeline := make([]int, int(totalSeconds*synthSampleRate))

	for _, ab := range segments {
		want := int(ab.Duration() * synthSampleRate)
		if want <= 0 {
			continue
		}

		text := strings.TrimSpace(translations.Lookup(ab.BlockID, ab.Source))
		if text == "" {
			// Nothing to speak; the slot stays silent.
			continue
		}

		var clip []int
		buf, err := synth.Synthesize(ctx, text, language)
		if err != nil {
			logger.Warn("block synthesis failed, inserting silence",
				logger.String("blockID", ab.BlockID),
				logger.Err(err))
			clip = make([]int, want)
		} else {
			clip = fitClip(resample(buf.Data, buf.Format.SampleRate, synthSampleRate), want)
		}

		offset := int(ab.Start * synthSampleRate)
		for i, s := range clip {
			if offset+i >= len(timeline) {
				break
			}
			timeline[offset+i] = s
		}
	}

	wavPath := outputPath
	if !strings.EqualFold(filepath.Ext(outputPath), ".wav") {
		wavPath = forceExt(outputPath, ".wav")
	}
	if err := writeWAV(wavPath, timeline, synthSampleRate); err != nil {
		return "", err
	}
	if wavPath == outputPath {
		logger.Info("audio synthesized", logger.String("output", outputPath))
		return outputPath, nil
	}

	// The target container is not WAV; hand conversion to ffmpeg and keep
	// the WAV when it is not installed.
	if err := convertAudio(ctx, wavPath, outputPath); err != nil {
		logger.Warn("audio conversion failed, keeping WAV output",
			logger.String("output", wavPath),
			logger.Err(err))
		return wavPath, nil
	}
	os.Remove(wavPath)

	logger.Info("audio synthesized", logger.String("output", outputPath))
	return outputPath, nil
}

// resample converts samples between rates with linear interpolation.
func resample(samples []int, from, to int) []int {
	if from == to || from <= 0 || len(samples) == 0 {
		return samples
	}

	ratio := float64(from) / float64(to)
	out := make([]int, int(float64(len(samples))/ratio))
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = int(float64(samples[idx])*(1-frac) + float64(samples[idx+1])*frac)
	}
	return out
}

// fitClip trims or zero-pads a clip to exactly want samples.
func fitClip(samples []int, want int) []int {
	if len(samples) >= want {
		return samples[:want]
	}
	out := make([]int, want)
	copy(out, samples)
	return out
}

func writeWAV(path string, samples []int, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return types.NewAppError(types.ErrReconstruction, "cannot create audio file", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  rate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return types.NewAppError(types.ErrReconstruction, "cannot write audio samples", err)
	}
	if err := enc.Close(); err != nil {
		return types.NewAppError(types.ErrReconstruction, "cannot finalize audio file", err)
	}
	return nil
}

func convertAudio(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", src, dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		return types.NewAppErrorWithDetails(types.ErrReconstruction,
			"ffmpeg conversion failed", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// forceExt swaps path's extension.
func forceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
