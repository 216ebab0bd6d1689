package rag

import (
	"regexp"
	"strings"

	"personal-site-ai/models"
)

// DefaultMaxChunkLength bounds chunk size when no configuration is
// supplied. Matches the ingestion default.
const DefaultMaxChunkLength = 1500

var sentenceRegex = regexp.MustCompile(`[^.!?]+[.!?]+`)

// SplitChunks splits text into bounded, sentence-aligned chunks.
// Sentences are accumulated greedily; a chunk is flushed when adding
// the next sentence would exceed maxLen. A single sentence longer than
// maxLen becomes its own chunk verbatim rather than being split
// mid-sentence. Concatenating the chunks in index order reproduces the
// input up to whitespace normalization. Whitespace-only input yields
// no chunks.
func SplitChunks(sourceID, text string, maxLen int) []models.Chunk {
	if maxLen <= 0 {
		maxLen = DefaultMaxChunkLength
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []models.Chunk
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, models.Chunk{
			Text:     current.String(),
			SourceID: sourceID,
			Index:    len(chunks),
		})
		current.Reset()
	}

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxLen {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()

	return chunks
}

// splitSentences cuts on terminal punctuation (. ! ?). Trailing text
// without terminal punctuation is kept as a final sentence so no input
// is lost.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceRegex.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
