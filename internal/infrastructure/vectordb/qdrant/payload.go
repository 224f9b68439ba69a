package qdrant

import (
	"encoding/json"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

// eventPayload converts an event to a Qdrant payload. The date is stored as
// its JSON encoding so every date kind survives the round trip.
func eventPayload(event entities.TimelineEvent) (map[string]*pb.Value, error) {
	date, err := json.Marshal(event.Date)
	if err != nil {
		return nil, fmt.Errorf("marshaling event date: %w", err)
	}

	return map[string]*pb.Value{
		"timeline_id": stringValue(event.TimelineID),
		"title":       stringValue(event.Title),
		"description": stringValue(event.Description),
		"date":        stringValue(string(date)),
		"date_kind":   stringValue(string(event.Date.Kind)),
		"source_file": stringValue(event.SourceFile),
		"created_at":  stringValue(event.CreatedAt.Format(time.RFC3339)),
	}, nil
}

// pointToEvent converts a Qdrant point to a TimelineEvent.
func pointToEvent(id *pb.PointId, payload map[string]*pb.Value) (entities.TimelineEvent, error) {
	event := entities.TimelineEvent{
		ID:          id.GetUuid(),
		TimelineID:  getStringValue(payload, "timeline_id"),
		Title:       getStringValue(payload, "title"),
		Description: getStringValue(payload, "description"),
		SourceFile:  getStringValue(payload, "source_file"),
	}

	if raw := getStringValue(payload, "date"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &event.Date); err != nil {
			return entities.TimelineEvent{}, fmt.Errorf("unmarshaling date of point %s: %w", event.ID, err)
		}
	}

	if created := getStringValue(payload, "created_at"); created != "" {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			event.CreatedAt = t
		}
	}

	return event, nil
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
