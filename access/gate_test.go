package access_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/access"
)

func TestMayAct(t *testing.T) {
	owner := uuid.New()
	borrower := uuid.New()
	stranger := uuid.New()

	res := access.Resource{OwnerID: owner, BorrowerID: borrower}

	cases := []struct {
		name      string
		principal uuid.UUID
		op        access.Operation
		res       access.Resource
		want      bool
	}{
		{"anonymous never acts", uuid.Nil, access.OpCreateBook, access.Resource{}, false},
		{"anyone creates listings", stranger, access.OpCreateBook, access.Resource{}, true},
		{"anyone creates reservations", stranger, access.OpCreateResv, access.Resource{}, true},

		{"owner updates own listing", owner, access.OpUpdateBook, res, true},
		{"stranger cannot update listing", stranger, access.OpUpdateBook, res, false},
		{"borrower cannot delete listing", borrower, access.OpDeleteBook, res, false},

		{"owner confirms", owner, access.OpConfirmResv, res, true},
		{"borrower cannot confirm", borrower, access.OpConfirmResv, res, false},
		{"borrower cancels own reservation", borrower, access.OpCancelResv, res, true},
		{"owner cancels too", owner, access.OpCancelResv, res, true},
		{"stranger cannot cancel", stranger, access.OpCancelResv, res, false},
		{"owner completes", owner, access.OpCompleteResv, res, true},
		{"borrower cannot complete", borrower, access.OpCompleteResv, res, false},

		{"member reads own ledger", owner, access.OpReadLedger, access.Resource{MemberID: owner}, true},
		{"member cannot read another ledger", owner, access.OpReadLedger, access.Resource{MemberID: borrower}, false},
		{"member claims own bonus", borrower, access.OpClaimBonus, access.Resource{MemberID: borrower}, true},
		{"member sets own guardian", owner, access.OpSetGuardian, access.Resource{MemberID: owner}, true},
		{"member cannot set another guardian", owner, access.OpSetGuardian, access.Resource{MemberID: borrower}, false},

		{"unknown operation denied", owner, access.Operation("book.transmogrify"), res, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := access.MayAct(tc.principal, tc.op, tc.res); got != tc.want {
				t.Fatalf("MayAct = %v; want %v", got, tc.want)
			}
		})
	}
}
