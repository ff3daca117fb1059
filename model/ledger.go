// model/ledger.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type LedgerType string

const (
	LedgerReservationSpend  LedgerType = "reservation_spend"
	LedgerReservationRefund LedgerType = "reservation_refund"
	LedgerDailyBonus        LedgerType = "daily_bonus"
	LedgerShareBonus        LedgerType = "share_bonus"
	LedgerAdjustment        LedgerType = "adjustment"
)

// LedgerEntry is append-only. A member's balance is always the sum of
// their entries; there is no stored counter to drift out of sync.
type LedgerEntry struct {
	ID          int64      `json:"id"`
	MemberID    uuid.UUID  `json:"member_id"`
	Amount      int        `json:"amount"`
	EntryType   LedgerType `json:"entry_type"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}
