package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// recordActivity appends a feed entry. The feed is informational, so a
// failure is logged and the surrounding operation still succeeds.
func recordActivity(ctx context.Context, store storage.Store, a *models.Activity) {
	if err := store.CreateActivity(ctx, a); err != nil {
		slog.Warn("Failed to record activity",
			"group_id", a.GroupID,
			"kind", a.Kind,
			"error", err,
		)
	}
}
