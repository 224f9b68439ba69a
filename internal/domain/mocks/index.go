package mocks

import "context"

// Embedder is a mock ports.Embedder returning the same vector for every
// text. It records the texts it was given.
type Embedder struct {
	EmbeddingResult []float32
	Err             error

	Texts []string
}

// Embed records text and returns EmbeddingResult or Err.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Texts = append(m.Texts, text)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.EmbeddingResult, nil
}

// EmbedBatch records texts and returns one EmbeddingResult per text.
func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.Texts = append(m.Texts, texts...)
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.EmbeddingResult
	}
	return result, nil
}

// CollectionManager is a mock ports.CollectionManager.
type CollectionManager struct {
	EnsureErr error
	DeleteErr error

	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
	VectorSize                uint64
}

// EnsureCollection records the vector size and returns EnsureErr.
func (m *CollectionManager) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	m.EnsureCollectionCallCount++
	m.VectorSize = vectorSize
	return m.EnsureErr
}

// DeleteCollection returns DeleteErr.
func (m *CollectionManager) DeleteCollection(ctx context.Context) error {
	m.DeleteCollectionCallCount++
	return m.DeleteErr
}
