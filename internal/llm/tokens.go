package llm

import (
	"strings"

	"ReviewPulse/internal/domain"
)

// EstimateTokens approximates the token count of text. Llama-style
// tokenization averages roughly 1 token per 0.75 words; empty text is zero
// and any non-empty text counts at least one token.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	estimate := int(float64(words) / 0.75)
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}

// ChunkByTokens greedily packs texts into batches whose estimated token sum
// stays within maxTokens minus bufferTokens. A single text exceeding the
// ceiling on its own goes into a batch by itself rather than being dropped
// or split mid-text.
func ChunkByTokens(texts []string, maxTokens, bufferTokens int) ([][]string, error) {
	if maxTokens <= bufferTokens {
		return nil, &domain.ConfigError{Msg: "max tokens must be greater than buffer tokens"}
	}

	limit := maxTokens - bufferTokens

	var (
		batches [][]string
		current []string
		used    int
	)

	for _, text := range texts {
		estimate := EstimateTokens(text)

		if estimate > limit {
			if len(current) > 0 {
				batches = append(batches, current)
				current = nil
				used = 0
			}
			batches = append(batches, []string{text})
			continue
		}

		if used+estimate > limit && len(current) > 0 {
			batches = append(batches, current)
			current = []string{text}
			used = estimate
		} else {
			current = append(current, text)
			used += estimate
		}
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches, nil
}
