package reconstruct

import (
	"fmt"
	"os"
	"strings"

	"doc-translator/internal/block"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// FormatSRTTimestamp renders seconds as an SRT timing value, truncated to
// millisecond precision: 125.4 becomes "00:02:05,400".
func FormatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds * 1000)
	h := total / 3600000
	m := total % 3600000 / 60000
	s := total % 60000 / 1000
	ms := total % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// RebuildSRT writes one SubRip record per audio block, 1-indexed in block
// order.
func RebuildSRT(doc *block.ExtractedDocument, translations block.TranslationMap, outputPath string) (string, error) {
	var sb strings.Builder
	index := 0
	for _, b := range doc.Blocks {
		ab, ok := b.(*block.AudioBlock)
		if !ok {
			continue
		}
		index++
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			index,
			FormatSRTTimestamp(ab.Start),
			FormatSRTTimestamp(ab.End),
			translations.Lookup(ab.BlockID, ab.Source))
	}

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0o644); err != nil {
		return "", types.NewAppError(types.ErrReconstruction,
			"cannot write subtitle file", err)
	}

	logger.Info("SRT written",
		logger.String("output", outputPath),
		logger.Int("records", index))
	return outputPath, nil
}
