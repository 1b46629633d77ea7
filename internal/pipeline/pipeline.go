// Package pipeline wires extraction, translation and reconstruction into
// the single end-to-end operation shared by the HTTP service and the CLI.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"doc-translator/internal/block"
	"doc-translator/internal/config"
	"doc-translator/internal/extract"
	"doc-translator/internal/logger"
	"doc-translator/internal/reconstruct"
	"doc-translator/internal/translator"
	"doc-translator/internal/tts"
	"doc-translator/internal/types"
)

// Pipeline runs file translations. The translator backend is created
// lazily on first use and reused across jobs until Close.
type Pipeline struct {
	cfg       *config.Config
	extractor *extract.Extractor
	synth     *tts.Client

	mu sync.Mutex
	tr *translator.Translator
}

// New builds a Pipeline from configuration. No network connection is
// opened until the first translation runs.
func New(cfg *config.Config) *Pipeline {
	var whisper *extract.WhisperClient
	if cfg.WhisperURL != "" {
		whisper = extract.NewWhisperClient(cfg.WhisperURL)
	}
	return &Pipeline{
		cfg:       cfg,
		extractor: extract.NewExtractor(whisper),
		synth:     tts.New(cfg.TTSURL),
	}
}

// SynthesisAvailable reports whether audio jobs can produce spoken output.
func (p *Pipeline) SynthesisAvailable() bool {
	return p.synth.Available()
}

// ProbeCapabilities logs which optional services are reachable. Called
// once at startup.
func (p *Pipeline) ProbeCapabilities(ctx context.Context) {
	if !p.synth.Available() {
		logger.Info("speech synthesis not configured, audio jobs will produce subtitles")
		return
	}
	if err := p.synth.Probe(ctx); err != nil {
		logger.Warn("speech synthesis service not responding", logger.Err(err))
	} else {
		logger.Info("speech synthesis available")
	}
}

// OutputName returns the artifact filename convention for an input
// filename: the stem suffixed with "_fr". Audio keeps its extension only
// when synthesis is available, otherwise the output is a subtitle file.
func (p *Pipeline) OutputName(inputName string, format types.DocumentFormat) string {
	ext := filepath.Ext(inputName)
	stem := strings.TrimSuffix(filepath.Base(inputName), ext)
	if format == types.FormatAudio && !p.synth.Available() {
		ext = ".srt"
	}
	return stem + "_fr" + ext
}

// TranslateFile runs the full pipeline on one file. outputPath may be
// empty, in which case the artifact lands next to the input under the
// naming convention. The returned path is the artifact actually written,
// which for audio may differ from the requested one when synthesis falls
// back to subtitles.
func (p *Pipeline) TranslateFile(ctx context.Context, inputPath, outputPath string, progress translator.ProgressCallback) (string, error) {
	format, err := extract.DetectFormat(inputPath)
	if err != nil {
		return "", err
	}

	logger.Info("translation started",
		logger.String("input", inputPath),
		logger.String("format", string(format)))

	doc, err := p.extractor.Extract(inputPath, format)
	if err != nil {
		return "", err
	}
	if len(doc.Blocks) == 0 {
		return "", types.NewAppError(types.ErrEmptyDocument,
			"no translatable text found in "+filepath.Base(inputPath), nil)
	}

	tr, err := p.translator()
	if err != nil {
		return "", err
	}

	translations := tr.TranslateBlocks(ctx, doc.Blocks, progress)

	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(inputPath), p.OutputName(inputPath, format))
	}

	out, err := p.rebuild(ctx, doc, translations, outputPath)
	if err != nil {
		return "", err
	}

	logger.Info("translation complete",
		logger.String("output", out),
		logger.Int("blocks", len(doc.Blocks)))
	return out, nil
}

func (p *Pipeline) rebuild(ctx context.Context, doc *block.ExtractedDocument, translations block.TranslationMap, outputPath string) (string, error) {
	switch doc.Format {
	case types.FormatPDF:
		return reconstruct.RebuildPDF(doc, translations, outputPath)
	case types.FormatDocx:
		return reconstruct.RebuildDocx(doc, translations, outputPath)
	case types.FormatPptx:
		return reconstruct.RebuildPptx(doc, translations, outputPath)
	case types.FormatAudio:
		return reconstruct.RebuildAudio(ctx, doc, translations, outputPath, p.cfg.TargetLanguage, p.synth)
	default:
		return "", types.NewAppError(types.ErrInternal,
			fmt.Sprintf("no reconstructor for format %s", doc.Format), nil)
	}
}

// translator returns the shared backend, creating it on first use.
func (p *Pipeline) translator() (*translator.Translator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tr == nil {
		tr, err := translator.New(p.cfg)
		if err != nil {
			return nil, err
		}
		p.tr = tr
	}
	return p.tr, nil
}

// Close tears down the translation backend. Safe when nothing ran.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tr != nil {
		p.tr.Close()
		p.tr = nil
	}
}
