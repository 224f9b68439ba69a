package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/mocks"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

const testWorld = "middle"

type handlerFixture struct {
	relationalDB *mocks.RelationalDB
	vectorDB     *mocks.VectorDB
	embedder     *mocks.Embedder
	llm          *mocks.LLMClient
	timelines    *services.TimelineService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		relationalDB: mocks.NewRelationalDB(),
		vectorDB:     &mocks.VectorDB{},
		embedder:     &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2, 0.3}},
		llm:          &mocks.LLMClient{},
	}
	f.timelines = services.NewTimelineService(f.relationalDB, f.embedder, f.vectorDB, zaptest.NewLogger(t))
	return f
}

func (f *handlerFixture) createTimeline(t *testing.T, name, eras string) *entities.Timeline {
	t.Helper()
	tl, err := f.timelines.Create(t.Context(), testWorld, name, "", eras)
	require.NoError(t, err)
	return tl
}

func TestTimelineHandler_HandleCreate(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewTimelineHandler(f.timelines, "First Age, Second Age")

	t.Run("explicit eras", func(t *testing.T) {
		tl, err := handler.HandleCreate(t.Context(), testWorld, "Main", "", "BE, SE")
		require.NoError(t, err)
		assert.Equal(t, "BE, SE", tl.Eras)
	})

	t.Run("default eras", func(t *testing.T) {
		tl, err := handler.HandleCreate(t.Context(), testWorld, "Elves", "", "  ")
		require.NoError(t, err)
		assert.Equal(t, "First Age, Second Age", tl.Eras)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := handler.HandleCreate(t.Context(), testWorld, "main", "", "")
		assert.ErrorIs(t, err, services.ErrTimelineExists)
	})
}

func TestTimelineHandler_HandleShow(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewTimelineHandler(f.timelines, "")
	f.createTimeline(t, "Main", "BE, SE")

	for _, req := range []AddEventRequest{
		{Title: "Crowning", Date: "SE 5"},
		{Title: "Someday", Date: "when the stars align"},
		{Title: "Founding", Date: "BE 10"},
		{Title: "Migration", Date: "~BE 3"},
	} {
		req.Timeline = "main"
		_, err := handler.HandleAddEvent(t.Context(), testWorld, req)
		require.NoError(t, err)
	}

	view, err := handler.HandleShow(t.Context(), testWorld, "Main")
	require.NoError(t, err)
	assert.Equal(t, []string{"BE", "SE"}, chrono.EraNames(view.Eras))

	var titles []string
	for _, oe := range view.Events {
		titles = append(titles, oe.Event.Title)
	}
	assert.Equal(t, []string{"Migration", "Founding", "Crowning", "Someday"}, titles)
	assert.Equal(t, chrono.PlacementLast, view.Events[3].Key.Placement)
	assert.Equal(t, 4, f.vectorDB.SaveCallCount)
}

func TestTimelineHandler_HandleList(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewTimelineHandler(f.timelines, "")
	f.createTimeline(t, "Main", "BE, SE")
	f.createTimeline(t, "Elves", `["Dawn","Noon"]`)

	_, err := handler.HandleAddEvent(t.Context(), testWorld, AddEventRequest{Timeline: "Main", Title: "Founding", Date: "BE 1"})
	require.NoError(t, err)

	summaries, err := handler.HandleList(t.Context(), testWorld)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Elves", summaries[0].Timeline.Name)
	assert.Equal(t, []string{"Dawn", "Noon"}, summaries[0].Eras)
	assert.Zero(t, summaries[0].EventCount)
	assert.Equal(t, 1, summaries[1].EventCount)
}

func TestTimelineHandler_HandleSetEras(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewTimelineHandler(f.timelines, "")
	f.createTimeline(t, "Main", "BE, SE")

	eras, err := handler.HandleSetEras(t.Context(), testWorld, "Main", "BE, SE, NE")
	require.NoError(t, err)
	assert.Equal(t, []string{"BE", "SE", "NE"}, chrono.EraNames(eras))

	got, err := handler.HandleEras(t.Context(), testWorld, "Main")
	require.NoError(t, err)
	assert.Equal(t, eras, got)
}

func TestTimelineHandler_Events(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewTimelineHandler(f.timelines, "")
	f.createTimeline(t, "Main", "BE, SE")

	t.Run("unknown timeline", func(t *testing.T) {
		_, err := handler.HandleAddEvent(t.Context(), testWorld, AddEventRequest{Timeline: "Other", Title: "x", Date: "BE 1"})
		assert.ErrorIs(t, err, services.ErrTimelineNotFound)
	})

	t.Run("range date parsed", func(t *testing.T) {
		ev, err := handler.HandleAddEvent(t.Context(), testWorld, AddEventRequest{
			Timeline: "Main", Title: "Long war", Description: " years of war ", Date: "SE 10..SE 20",
		})
		require.NoError(t, err)
		assert.Equal(t, entities.DateRange, ev.Date.Kind)
		assert.Equal(t, "years of war", ev.Description)
		assert.NotEmpty(t, ev.ID)
	})

	t.Run("remove", func(t *testing.T) {
		ev, err := handler.HandleAddEvent(t.Context(), testWorld, AddEventRequest{Timeline: "Main", Title: "Flood", Date: "SE 3"})
		require.NoError(t, err)

		require.NoError(t, handler.HandleRemoveEvent(t.Context(), ev.ID))
		assert.ErrorIs(t, handler.HandleRemoveEvent(t.Context(), ev.ID), services.ErrEventNotFound)
	})
}

func TestTimelineHandler_HandleDelete(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewTimelineHandler(f.timelines, "")
	tl := f.createTimeline(t, "Main", "BE, SE")

	require.NoError(t, handler.HandleDelete(t.Context(), testWorld, "Main"))
	assert.Equal(t, []string{tl.ID}, f.vectorDB.DeletedTimelines)

	_, err := handler.HandleShow(t.Context(), testWorld, "Main")
	assert.ErrorIs(t, err, services.ErrTimelineNotFound)
}

func TestTimelineHandler_HandleSaveEvents(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewTimelineHandler(f.timelines, "")
	tl := f.createTimeline(t, "Main", "BE, SE")

	events := []entities.TimelineEvent{
		{Title: "Crowning", Date: chrono.ParseEventDate("SE 5")},
		{Title: "Founding", Date: chrono.ParseEventDate("BE 10")},
	}

	n, err := handler.HandleSaveEvents(t.Context(), testWorld, "main", events)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.vectorDB.SaveCallCount)

	view, err := handler.HandleShow(t.Context(), testWorld, "Main")
	require.NoError(t, err)
	require.Len(t, view.Events, 2)
	assert.Equal(t, "Founding", view.Events[0].Event.Title)
	assert.Equal(t, tl.ID, view.Events[0].Event.TimelineID)

	t.Run("blank title stops", func(t *testing.T) {
		n, err := handler.HandleSaveEvents(t.Context(), testWorld, "Main", []entities.TimelineEvent{
			{Title: "Flood", Date: chrono.ParseEventDate("SE 6")},
			{Title: " "},
		})
		assert.ErrorIs(t, err, services.ErrEmptyName)
		assert.Equal(t, 1, n)
	})

	t.Run("timeline required", func(t *testing.T) {
		_, err := handler.HandleSaveEvents(t.Context(), testWorld, "", events)
		assert.ErrorContains(t, err, "timeline is required")
	})
}
