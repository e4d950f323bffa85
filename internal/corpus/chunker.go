// Package corpus splits a story collection into per-work spans and
// fixed-size overlapping chunks suitable for embedding.
package corpus

import (
	"strconv"
	"strings"

	"github.com/athenaeum-labs/minerva/internal/domain"
)

// ChunkConfig controls the chunking window. Size and Overlap are in bytes;
// the step between chunk starts is Size-Overlap. Chunks whose trimmed text
// is not longer than MinLen are discarded.
type ChunkConfig struct {
	Size    int
	Overlap int
	MinLen  int

	// EndMarker bounds the last work's span (e.g. a Gutenberg trailer line).
	// If absent from the text, the span runs to the end of the corpus.
	EndMarker string
}

// Split locates each title as a standalone line and returns the works found,
// in input order. A work's span runs from its title line to the next title's
// line (or to the end marker for the last title). Titles that do not occur
// in the text are skipped.
func Split(text string, titles []string, endMarker string) []domain.Work {
	works := make([]domain.Work, 0, len(titles))

	for i, title := range titles {
		start := strings.Index(text, "\n"+title+"\n")
		if start < 0 {
			continue
		}

		end := -1
		if i < len(titles)-1 {
			end = strings.Index(text, "\n"+titles[i+1]+"\n")
		} else if endMarker != "" {
			end = strings.Index(text, endMarker)
		}

		span := text[start:]
		if end >= 0 {
			if end <= start {
				// The next title (or the end marker) occurs before this
				// title's line, so the span is empty. Skip the work, same
				// as a title that never occurs.
				continue
			}
			span = text[start:end]
		}

		works = append(works, domain.Work{
			Title: title,
			Text:  span,
			Start: start,
		})
	}

	return works
}

// ChunkWork windows one work's span into overlapping chunks. The chunk id is
// the slugified title plus the starting offset within the span, which keeps
// ids stable across rebuilds of the same corpus.
func ChunkWork(w domain.Work, cfg ChunkConfig) []domain.Chunk {
	step := cfg.Size - cfg.Overlap
	if step <= 0 {
		step = cfg.Size
	}

	var chunks []domain.Chunk
	for off := 0; off < len(w.Text); off += step {
		end := off + cfg.Size
		if end > len(w.Text) {
			end = len(w.Text)
		}

		text := strings.TrimSpace(w.Text[off:end])
		if len(text) <= cfg.MinLen {
			continue
		}

		chunks = append(chunks, domain.Chunk{
			ID:     Slug(w.Title) + "_" + strconv.Itoa(off),
			Text:   text,
			Story:  w.Title,
			Offset: off,
		})
	}

	return chunks
}

// ChunkCorpus splits the corpus into works and chunks each one.
// Empty text or zero located titles yield an empty slice, not an error.
func ChunkCorpus(text string, titles []string, cfg ChunkConfig) []domain.Chunk {
	var chunks []domain.Chunk
	for _, w := range Split(text, titles, cfg.EndMarker) {
		chunks = append(chunks, ChunkWork(w, cfg)...)
	}
	return chunks
}

// Slug lowercases a title and replaces spaces with underscores.
func Slug(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}
