package reservationsvc

import (
	"time"

	"github.com/vijender883/bookyard/model"
)

// CostFor prices a reservation window at create time. Shared books cost
// one credit per started day of the window; giveaways are a flat single
// credit; sell listings carry a flat holding fee.
func CostFor(intent model.Intent, start, end time.Time) int {
	switch intent {
	case model.IntentShare:
		days := int(end.Sub(start) / (24 * time.Hour))
		if end.Sub(start)%(24*time.Hour) > 0 {
			days++
		}
		if days < 1 {
			days = 1
		}
		return days
	case model.IntentSell:
		return 5
	default: // giveaway
		return 1
	}
}

// refundFor computes the credits returned on cancellation. Pending
// reservations refund in full. Active ones refund proportionally to
// the unused part of the window, rounded down.
func refundFor(r *model.Reservation, now time.Time) int {
	if r.Status == model.ReservationPending {
		return r.CreditsUsed
	}
	total := r.EndDate.Sub(r.StartDate)
	if total <= 0 {
		return 0
	}
	if !now.After(r.StartDate) {
		return r.CreditsUsed
	}
	if !now.Before(r.EndDate) {
		return 0
	}
	remaining := r.EndDate.Sub(now)
	refund := int(int64(r.CreditsUsed) * int64(remaining) / int64(total))
	if refund < 0 {
		refund = 0
	}
	if refund > r.CreditsUsed {
		refund = r.CreditsUsed
	}
	return refund
}
