package translator

import "doc-translator/internal/block"

// estimateTokens approximates the token cost of a text as one token per
// four characters.
func estimateTokens(text string) int {
	return len(text) / 4
}

// ChunkBlocks groups blocks into token-bounded chunks. When a chunk fills
// up, the next chunk is seeded with the last block of the previous one so
// adjacent chunks share one block of context. Every input block appears in
// at least one chunk, in order, and no chunk is empty.
func ChunkBlocks(blocks []block.Block, maxTokens int) [][]block.Block {
	if len(blocks) == 0 {
		return nil
	}

	var chunks [][]block.Block
	var current []block.Block
	running := 0

	for _, b := range blocks {
		cost := estimateTokens(b.Text())
		if len(current) > 0 && running+cost > maxTokens {
			chunks = append(chunks, current)
			overlap := current[len(current)-1]
			current = []block.Block{overlap}
			running = estimateTokens(overlap.Text())
		}
		current = append(current, b)
		running += cost
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}
