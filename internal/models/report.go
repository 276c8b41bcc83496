package models

import (
	"time"

	"github.com/google/uuid"
)

// Report represents a work report, linked to one organization and to its
// creator and client users through join rows.
type Report struct {
	ID        uuid.UUID `json:"id"`
	Rating    int       `json:"rating"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
