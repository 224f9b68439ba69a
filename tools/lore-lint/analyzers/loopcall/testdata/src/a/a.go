package a

import "context"

type Event struct{ Title string }

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorDB interface {
	Save(ctx context.Context, ev Event) error
	SaveBatch(ctx context.Context, evs []Event) error
	SearchByTimeline(ctx context.Context, embedding []float32, timelineID string, limit int) ([]Event, error)
}

func bad(ctx context.Context, events []Event, e Embedder, db VectorDB) {
	for _, ev := range events {
		e.Embed(ctx, ev.Title) // want "Embed called inside loop - use EmbedBatch"
		db.Save(ctx, ev)       // want "Save called inside loop - use SaveBatch"
	}
}

func badSearch(ctx context.Context, timelines []string, db VectorDB) {
	for i := 0; i < len(timelines); i++ {
		db.SearchByTimeline(ctx, nil, timelines[i], 5) // want "SearchByTimeline called inside loop"
	}
}

func good(ctx context.Context, events []Event, e Embedder, db VectorDB) {
	texts := make([]string, 0, len(events))
	for _, ev := range events {
		texts = append(texts, ev.Title)
	}
	e.EmbedBatch(ctx, texts)
	db.SaveBatch(ctx, events)
}
