package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle rows are created and edited by the catalog tooling; this service
// only reads them to validate media ownership.
type Vehicle struct {
	ID          int64      `json:"id" db:"id"`
	Make        string     `json:"make" db:"make"`
	Model       string     `json:"model" db:"model"`
	Year        int        `json:"year" db:"year"`
	Price       float64    `json:"price" db:"price"`
	Mileage     int        `json:"mileage" db:"mileage"`
	Condition   string     `json:"condition" db:"condition"`
	Description string     `json:"description" db:"description"`
	IsVisible   bool       `json:"is_visible" db:"is_visible"`
	UserID      *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
