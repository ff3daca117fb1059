// model/feed.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type FeedAction string

const (
	FeedBookListed         FeedAction = "book_listed"
	FeedReservationCreated FeedAction = "reservation_created"
)

// FeedEntry is a derived, write-once activity record. Losing one never
// corrupts engine state.
type FeedEntry struct {
	ID         int64          `json:"id"`
	ActorID    uuid.UUID      `json:"actor_id"`
	ActionType FeedAction     `json:"action_type"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	IsPublic   bool           `json:"is_public"`
	CreatedAt  time.Time      `json:"created_at"`
}
