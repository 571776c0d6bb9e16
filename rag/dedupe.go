package rag

import "strings"

const fingerprintLength = 200

// dedupeChunks collapses near-duplicate passages, keeping the first
// occurrence. The fingerprint is the lower-cased, trimmed first 200
// characters of the content, so accumulation order decides which copy
// survives.
func dedupeChunks(chunks []Chunk) []Chunk {
	if len(chunks) <= 1 {
		return chunks
	}
	seen := make(map[string]bool, len(chunks))
	deduped := make([]Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		fp := chunkFingerprint(chunk.Content)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		deduped = append(deduped, chunk)
	}
	return deduped
}

func chunkFingerprint(content string) string {
	content = strings.ToLower(strings.TrimSpace(content))
	runes := []rune(content)
	if len(runes) > fingerprintLength {
		return string(runes[:fingerprintLength])
	}
	return content
}
