package ports

import "context"

// Embedder turns event text into vectors for the semantic event index.
type Embedder interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CollectionManager creates and drops a world's event collection. It is
// kept apart from VectorDB so world setup does not need a full index.
type CollectionManager interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection removes the collection and every indexed event.
	DeleteCollection(ctx context.Context) error
}
