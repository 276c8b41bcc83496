package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice represents a billing document. It is linked to exactly one
// organization and to the users party to it (creator and client) through
// join rows.
type Invoice struct {
	ID        uuid.UUID `json:"id"`
	Paid      bool      `json:"paid"`
	Value     string    `json:"value"` // numeric(10,2), kept as string to avoid float drift
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Due       time.Time `json:"due"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
