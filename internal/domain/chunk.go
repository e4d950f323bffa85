package domain

// Work is one named story located inside the corpus text.
type Work struct {
	Title string
	Text  string
	Start int // byte offset of the title line in the corpus
}

// Chunk is a bounded-length substring of one work, the unit of retrieval.
// ID is slug(title) + "_" + offset and is unique within the corpus.
type Chunk struct {
	ID     string
	Text   string
	Story  string
	Offset int // byte offset of the chunk within its work's span
}

// IndexedEntry is a chunk plus its embedding vector, owned by the semantic
// store. Never mutated after insertion; dropped only on full rebuild.
type IndexedEntry struct {
	Chunk  Chunk
	Vector []float32
}

// Hit is one semantic search result, ordered by descending similarity.
type Hit struct {
	Text  string
	Story string
	Score float64
}
