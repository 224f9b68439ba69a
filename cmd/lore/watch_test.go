package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

type watchRecorder struct {
	extracted []string
	saved     [][]entities.TimelineEvent
	saveErr   error
}

func newTestWatchState(input string, rec *watchRecorder, events ...entities.TimelineEvent) (*watchState, *bytes.Buffer) {
	var out bytes.Buffer
	s := &watchState{
		eraOrder: []string{"BE", "SE"},
		extract: func(_ context.Context, text string) (*handlers.IngestResult, error) {
			rec.extracted = append(rec.extracted, text)
			return &handlers.IngestResult{Events: append([]entities.TimelineEvent(nil), events...), EventsCount: len(events)}, nil
		},
		save: func(_ context.Context, evs []entities.TimelineEvent) (int, error) {
			if rec.saveErr != nil {
				return 0, rec.saveErr
			}
			rec.saved = append(rec.saved, append([]entities.TimelineEvent(nil), evs...))
			return len(evs), nil
		},
		in:  bufio.NewScanner(strings.NewReader(input)),
		out: &out,
	}
	return s, &out
}

func event(title, date string) entities.TimelineEvent {
	return entities.TimelineEvent{Title: title, Date: chrono.ParseEventDate(date)}
}

func TestWatch_ExtractAndSave(t *testing.T) {
	rec := &watchRecorder{}
	input := "Mara was crowned in SE 5.\nLater that year\n\nlist\nsave\nquit\n"
	s, out := newTestWatchState(input, rec, event("Crowning", "SE 5"), event("Founding", "BE 10"))

	require.NoError(t, s.runInputLoop(t.Context()))

	require.Len(t, rec.extracted, 1)
	assert.Equal(t, "Mara was crowned in SE 5.\nLater that year", rec.extracted[0])
	require.Len(t, rec.saved, 1)
	assert.Len(t, rec.saved[0], 2)
	assert.Empty(t, s.pending)

	text := out.String()
	assert.Contains(t, text, "Found 2 events:")
	assert.Contains(t, text, "Saved 2 events.")
	assert.Contains(t, text, "Goodbye!")
	// list shows pending events in chronological order
	list := text[strings.Index(text, "Pending events (2):"):]
	assert.Less(t, strings.Index(list, "Founding"), strings.Index(list, "Crowning"))
}

func TestWatch_Warnings(t *testing.T) {
	rec := &watchRecorder{}
	s, out := newTestWatchState("", rec, event("Exile", "NE 2"), event("Someday", "when the stars align"), event("Crowning", "SE 5"))
	s.autoSave = true

	require.NoError(t, s.processInput(t.Context(), "text"))

	assert.Contains(t, out.String(), `era "NE" is not one of this timeline's eras`)
	assert.Contains(t, out.String(), "no usable date; it will sort last")
	assert.Empty(t, rec.saved, "events with warnings are not auto-saved")
	assert.Len(t, s.pending, 3)
}

func TestWatch_AutoSave(t *testing.T) {
	rec := &watchRecorder{}
	s, _ := newTestWatchState("", rec, event("Crowning", "SE 5"))
	s.autoSave = true

	require.NoError(t, s.processInput(t.Context(), "text"))

	require.Len(t, rec.saved, 1)
	assert.Empty(t, s.pending)
}

func TestWatch_SaveError(t *testing.T) {
	rec := &watchRecorder{saveErr: errors.New("disk full")}
	s, _ := newTestWatchState("", rec, event("Crowning", "SE 5"))

	require.NoError(t, s.processInput(t.Context(), "text"))
	err := s.savePending(t.Context())

	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, s.pending, 1, "unsaved events stay pending")
}

func TestWatch_QuitWithPending(t *testing.T) {
	rec := &watchRecorder{}
	s, out := newTestWatchState("some text\n\nquit\nno\ndiscard\nquit\n", rec, event("Crowning", "SE 5"))

	require.NoError(t, s.runInputLoop(t.Context()))

	assert.Contains(t, out.String(), "1 pending events will be lost")
	assert.Contains(t, out.String(), "Pending events discarded.")
	assert.Empty(t, rec.saved)
}
