// Package access holds the authorization predicates evaluated before
// every mutating engine call. The engine itself never authorizes; these
// rules mirror what the storage layer's row policies would enforce and
// stay testable without a database.
package access

import "github.com/google/uuid"

type Operation string

const (
	OpCreateBook   Operation = "book.create"
	OpUpdateBook   Operation = "book.update"
	OpDeleteBook   Operation = "book.delete"
	OpCreateResv   Operation = "reservation.create"
	OpConfirmResv  Operation = "reservation.confirm"
	OpCancelResv   Operation = "reservation.cancel"
	OpCompleteResv Operation = "reservation.complete"
	OpReadLedger   Operation = "ledger.read"
	OpClaimBonus   Operation = "ledger.claim_bonus"
	OpSetGuardian  Operation = "member.set_guardian"
)

// Resource carries the attribution of the row an operation targets.
// Fields irrelevant to an operation stay zero.
type Resource struct {
	OwnerID    uuid.UUID // listing owner
	BorrowerID uuid.UUID // reservation borrower
	MemberID   uuid.UUID // ledger / profile subject
}

// MayAct reports whether principal may perform op on the resource.
// principal is always an authenticated member id; uuid.Nil never passes.
func MayAct(principal uuid.UUID, op Operation, res Resource) bool {
	if principal == uuid.Nil {
		return false
	}
	switch op {
	case OpCreateBook, OpCreateResv:
		return true
	case OpUpdateBook, OpDeleteBook:
		return principal == res.OwnerID
	case OpConfirmResv:
		// Only the listing owner hands the book over.
		return principal == res.OwnerID
	case OpCancelResv:
		return principal == res.BorrowerID || principal == res.OwnerID
	case OpCompleteResv:
		return principal == res.OwnerID
	case OpReadLedger, OpClaimBonus:
		return principal == res.MemberID
	case OpSetGuardian:
		return principal == res.MemberID
	}
	return false
}
