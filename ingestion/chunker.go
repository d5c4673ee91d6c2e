package ingestion

import "strings"

// SplitText breaks a document into chunks of at most maxSize characters.
// Paragraph boundaries are preferred; adjacent paragraphs are packed into
// one chunk while they fit. A single paragraph longer than maxSize is split
// on word boundaries. Whitespace-only input yields no chunks.
func SplitText(text string, maxSize int) []string {
	if maxSize < 1 {
		maxSize = 1
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, paragraph := range paragraphs {
		if len(paragraph) > maxSize {
			flush()
			chunks = append(chunks, splitLongParagraph(paragraph, maxSize)...)
			continue
		}

		// +2 for the paragraph separator
		if current.Len() > 0 && current.Len()+len(paragraph)+2 > maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return chunks
}

// splitLongParagraph splits an oversized paragraph on word boundaries.
// A single word longer than maxSize becomes its own chunk.
func splitLongParagraph(paragraph string, maxSize int) []string {
	var chunks []string
	var current strings.Builder

	for _, word := range strings.Fields(paragraph) {
		if current.Len() > 0 && current.Len()+len(word)+1 > maxSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
