package models

import (
	"encoding/json"
	"time"
)

type ActivityLog struct {
	ID         string          `json:"id"`
	UserID     *string         `json:"userId,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
