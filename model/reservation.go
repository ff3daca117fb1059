// model/reservation.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Terminal reports whether no further transition may leave s.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

type Reservation struct {
	ID         int64             `json:"id"`
	BookID     int64             `json:"book_id"`
	BorrowerID uuid.UUID         `json:"borrower_id"`
	Status     ReservationStatus `json:"status"`
	StartDate  time.Time         `json:"start_date"`
	EndDate    time.Time         `json:"end_date"`
	// CreditsUsed is fixed at create time and never revised; refunds are
	// separate ledger entries.
	CreditsUsed int       `json:"credits_used"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
