// Package egress publishes the first stored brief to the configured channels:
// a Notion report page, an HTML email, or both.
package egress

// DefaultChunkSize is the block size used when splitting brief content.
const DefaultChunkSize = 2000

// ChunkText splits s into chunks of at most max characters (runes, so a
// multi-byte character is never cut). Concatenating the chunks reproduces s
// exactly. An empty input yields one empty chunk.
func ChunkText(s string, max int) []string {
	if max <= 0 {
		max = DefaultChunkSize
	}

	runes := []rune(s)
	if len(runes) <= max {
		return []string{s}
	}

	chunks := make([]string, 0, (len(runes)+max-1)/max)
	for start := 0; start < len(runes); start += max {
		end := start + max
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
