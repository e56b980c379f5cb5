package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"communities/internal/middleware"
	"communities/internal/models"
)

// Event type constants prevent typos in event names.
const (
	EventCommunityCreated = "community_created"
	EventCommunityUpdated = "community_updated"
	EventCommunityDeleted = "community_deleted"
)

// publishCommunityEvent sends the event on the broadcast channel and on the
// community's own channel.
func (s *Server) publishCommunityEvent(eventType string, communityID uint, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.Error("failed to marshal event",
			slog.String("event", eventType), slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.notifier.PublishBroadcast(ctx, string(eventJSON)); err != nil {
		middleware.Logger.Warn("failed to publish broadcast event",
			slog.String("event", eventType), slog.String("error", err.Error()))
	}
	if err := s.notifier.PublishCommunity(ctx, communityID, string(eventJSON)); err != nil {
		middleware.Logger.Warn("failed to publish community event",
			slog.String("event", eventType), slog.Uint64("community_id", uint64(communityID)),
			slog.String("error", err.Error()))
	}
}

func communitySummary(c *models.Community) map[string]interface{} {
	return map[string]interface{}{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
	}
}
