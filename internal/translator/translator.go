// Package translator turns block sequences into translation maps. One
// request is issued per block under a fixed concurrency cap; any per-block
// failure falls back to the block's own source text, so the returned map
// always covers every input block.
package translator

import (
	"context"
	"sync"

	"doc-translator/internal/block"
	"doc-translator/internal/config"
	"doc-translator/internal/logger"
)

// DefaultConcurrency bounds in-flight translation requests when the
// configuration does not say otherwise.
const DefaultConcurrency = 5

// ProgressCallback reports per-block completion. done is the number of
// blocks finished so far (monotonically non-decreasing); each block ID is
// reported exactly once.
type ProgressCallback func(done, total int, blockID string)

// TextTranslator is a single-text translation backend.
type TextTranslator interface {
	// TranslateText translates one text. contextHint, when non-empty, is a
	// short annotation such as "header" that biases register and brevity.
	TranslateText(ctx context.Context, text, contextHint string) (string, error)
	// Close releases the backend's network resources. Safe to call even if
	// no translation ever ran.
	Close()
}

// Translator coordinates concurrent per-block translation.
type Translator struct {
	backend     TextTranslator
	concurrency int
}

// New builds a Translator for the configured backend.
func New(cfg *config.Config) (*Translator, error) {
	var backend TextTranslator
	var err error

	switch cfg.TranslatorBackend {
	case "openai":
		backend, err = NewOpenAITranslator(cfg)
		if err != nil {
			return nil, err
		}
	default:
		backend = NewOllamaTranslator(cfg.OllamaURL, cfg.OllamaModel)
	}

	concurrency := cfg.TranslationConcurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Translator{backend: backend, concurrency: concurrency}, nil
}

// NewWithBackend builds a Translator around an explicit backend.
func NewWithBackend(backend TextTranslator, concurrency int) *Translator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Translator{backend: backend, concurrency: concurrency}
}

// TranslateBlocks translates every block concurrently, bounded by the
// permit pool. The result has exactly one entry per input block: failures
// are logged and resolved to the block's source text, never propagated.
func (t *Translator) TranslateBlocks(ctx context.Context, blocks []block.Block, progress ProgressCallback) block.TranslationMap {
	total := len(blocks)
	translations := make(block.TranslationMap, total)

	sem := make(chan struct{}, t.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, b := range blocks {
		wg.Add(1)
		go func(b block.Block) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			translated, err := t.backend.TranslateText(ctx, b.Text(), contextHint(b))
			if err != nil {
				logger.Warn("block translation failed, keeping source text",
					logger.String("blockID", b.ID()),
					logger.Err(err))
				translated = b.Text()
			}

			// Single writer per key; the lock also keeps the done count
			// monotonic for the callback.
			mu.Lock()
			translations[b.ID()] = translated
			done := len(translations)
			if progress != nil {
				progress(done, total, b.ID())
			}
			mu.Unlock()
		}(b)
	}

	wg.Wait()
	return translations
}

// Close releases the underlying backend.
func (t *Translator) Close() {
	t.backend.Close()
}

// contextHint returns the bracketed-hint label for header blocks: slide
// titles get a more specific hint than other headings.
func contextHint(b block.Block) string {
	if !b.Header() {
		return ""
	}
	if _, ok := b.(*block.PptxBlock); ok {
		return "slide title"
	}
	return "header"
}
