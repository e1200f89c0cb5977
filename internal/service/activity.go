package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
)

type ActivityStore interface {
	Create(ctx context.Context, entry models.ActivityLog) error
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

// ActivityRecorder writes the audit trail shown on the dashboard. Write failures
// are logged and never returned to the caller. A nil recorder is a no-op.
type ActivityRecorder struct {
	store ActivityStore
	log   zerolog.Logger
}

func NewActivityRecorder(store ActivityStore, log zerolog.Logger) *ActivityRecorder {
	return &ActivityRecorder{store: store, log: log}
}

func (r *ActivityRecorder) Record(ctx context.Context, userID *string, action, entityType, entityID string, details any) {
	if r == nil || r.store == nil {
		return
	}

	entry := models.ActivityLog{
		ID:         ids.New(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			r.log.Warn().Err(err).Str("action", action).Msg("activity details not encodable")
		} else {
			entry.Details = raw
		}
	}

	if err := r.store.Create(ctx, entry); err != nil {
		r.log.Warn().Err(err).Str("action", action).Str("entity_id", entityID).Msg("activity log write failed")
	}
}
