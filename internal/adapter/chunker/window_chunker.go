package chunker

import (
	"strings"

	"eadrag/internal/domain"
)

// LabelPrefix starts the first line of every chunk.
const LabelPrefix = "Collection: "

// WindowChunker splits section text into consecutive, non-overlapping
// windows of a fixed number of characters.
type WindowChunker struct {
	windowChars int
}

func NewWindowChunker(windowChars int) *WindowChunker {
	if windowChars <= 0 {
		windowChars = 2500
	}
	return &WindowChunker{windowChars: windowChars}
}

// Chunk returns ceil(len/W) chunks, each labelled with the source file.
// Windows count runes, so a multi-byte character is never split.
func (c *WindowChunker) Chunk(sec domain.SectionText) []domain.Chunk {
	runes := []rune(sec.Text)
	if len(runes) == 0 {
		return nil
	}

	label := Label(sec.File)
	chunks := make([]domain.Chunk, 0, (len(runes)+c.windowChars-1)/c.windowChars)

	for start := 0; start < len(runes); start += c.windowChars {
		end := min(start+c.windowChars, len(runes))
		chunks = append(chunks, domain.Chunk{
			Text: label + string(runes[start:end]),
			Metadata: domain.ChunkMetadata{
				File:    sec.File,
				Section: sec.Section,
			},
		})
	}

	return chunks
}

// Label returns the line prepended to every chunk of file.
func Label(file string) string {
	return LabelPrefix + file + "\n"
}

// StripLabel returns the chunk body without its label line.
func StripLabel(text string) string {
	if !strings.HasPrefix(text, LabelPrefix) {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[i+1:]
	}
	return ""
}
