package qdrant

import (
	"testing"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

func TestEventPayload_RoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date entities.EventDate
	}{
		{"exact", entities.ExactDate("SE", 12, 3, 4)},
		{"range", entities.RangeDate(entities.Calendar("BE", 10, 0, 0), entities.Calendar("BE", 20, 0, 0))},
		{"approximate without year", entities.ApproximateDate(entities.CalendarDate{Era: "BE"})},
		{"undated", entities.EventDate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := entities.TimelineEvent{
				ID:          "3f1c1e4a-8d0c-4a77-9a52-0c3c2a5b6f10",
				TimelineID:  "tl-1",
				Title:       "Crowning",
				Description: "the queen is crowned",
				Date:        tt.date,
				SourceFile:  "ch2.md",
				CreatedAt:   created,
			}

			payload, err := eventPayload(event)
			require.NoError(t, err)
			assert.Equal(t, "tl-1", payload["timeline_id"].GetStringValue())

			id := &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: event.ID}}
			back, err := pointToEvent(id, payload)
			require.NoError(t, err)
			assert.Equal(t, event, back)
		})
	}
}

func TestPointToEvent_BadDate(t *testing.T) {
	payload := map[string]*pb.Value{
		"title": stringValue("Broken"),
		"date":  stringValue("{not json"),
	}
	_, err := pointToEvent(&pb.PointId{}, payload)
	require.Error(t, err)
}

func TestPointToEvent_MissingFields(t *testing.T) {
	event, err := pointToEvent(&pb.PointId{}, map[string]*pb.Value{})
	require.NoError(t, err)
	assert.Empty(t, event.Title)
	assert.False(t, event.Date.IsResolved())
	assert.True(t, event.CreatedAt.IsZero())
}

func TestTimelineFilter(t *testing.T) {
	filter := timelineFilter("tl-9")
	require.Len(t, filter.Must, 1)
	field := filter.Must[0].GetField()
	require.NotNil(t, field)
	assert.Equal(t, "timeline_id", field.Key)
	assert.Equal(t, "tl-9", field.Match.GetKeyword())
}
