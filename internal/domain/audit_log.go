package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	UserName   *string         `json:"user_name,omitempty" db:"user_name"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   string          `json:"entity_id" db:"entity_id"`
	Detail     json.RawMessage `json:"detail,omitempty" db:"detail"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	EntityMedia = "vehicle_media"
	EntityUser  = "user"

	ActionUpload     = "upload"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionReorder    = "reorder"
	ActionSetPrimary = "set_primary"
)
