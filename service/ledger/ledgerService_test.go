// service/ledger/ledger_service_test.go
package ledgersvc_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
	ledgerrepo "github.com/vijender883/bookyard/repository/ledger"
	ledgersvc "github.com/vijender883/bookyard/service/ledger"
)

type repoMock struct {
	recordFn  func(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) (*model.LedgerEntry, error)
	claimFn   func(ctx context.Context, memberID uuid.UUID, amount int) (*model.LedgerEntry, error)
	balanceFn func(ctx context.Context, memberID uuid.UUID) (int, error)
	entriesFn func(ctx context.Context, memberID uuid.UUID) ([]model.LedgerEntry, error)
}

func (m *repoMock) Record(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) (*model.LedgerEntry, error) {
	return m.recordFn(ctx, memberID, amount, entryType, description)
}
func (m *repoMock) ClaimDailyBonus(ctx context.Context, memberID uuid.UUID, amount int) (*model.LedgerEntry, error) {
	return m.claimFn(ctx, memberID, amount)
}
func (m *repoMock) BalanceOf(ctx context.Context, memberID uuid.UUID) (int, error) {
	return m.balanceFn(ctx, memberID)
}
func (m *repoMock) Entries(ctx context.Context, memberID uuid.UUID) ([]model.LedgerEntry, error) {
	return m.entriesFn(ctx, memberID)
}

func TestAdjust_Validation(t *testing.T) {
	s := ledgersvc.New(&repoMock{})
	if _, err := s.Adjust(context.Background(), uuid.New(), 0, "noop"); err != ledgersvc.ErrBadAmount {
		t.Fatalf("err = %v; want ErrBadAmount", err)
	}
}

func TestAdjust_MapsInsufficient(t *testing.T) {
	m := &repoMock{
		recordFn: func(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) (*model.LedgerEntry, error) {
			return nil, ledgerrepo.ErrInsufficient
		},
	}
	s := ledgersvc.New(m)
	if _, err := s.Adjust(context.Background(), uuid.New(), -5, "debit"); err != ledgersvc.ErrInsufficientCredits {
		t.Fatalf("err = %v; want ErrInsufficientCredits", err)
	}
}

func TestAdjust_Success(t *testing.T) {
	member := uuid.New()
	m := &repoMock{
		recordFn: func(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) (*model.LedgerEntry, error) {
			if memberID != member || amount != 7 || entryType != model.LedgerAdjustment {
				t.Fatalf("unexpected args: %v %d %s", memberID, amount, entryType)
			}
			return &model.LedgerEntry{ID: 1, MemberID: memberID, Amount: amount, EntryType: entryType}, nil
		},
	}
	s := ledgersvc.New(m)
	e, err := s.Adjust(context.Background(), member, 7, "gift")
	if err != nil || e.Amount != 7 {
		t.Fatalf("got %v %v; want amount 7, nil", e, err)
	}
}

func TestClaimDailyBonus_MapsAlreadyClaimed(t *testing.T) {
	m := &repoMock{
		claimFn: func(ctx context.Context, memberID uuid.UUID, amount int) (*model.LedgerEntry, error) {
			return nil, ledgerrepo.ErrAlreadyClaimed
		},
	}
	s := ledgersvc.New(m)
	if _, err := s.ClaimDailyBonus(context.Background(), uuid.New()); err != ledgersvc.ErrAlreadyClaimed {
		t.Fatalf("err = %v; want ErrAlreadyClaimed", err)
	}
}

func TestClaimDailyBonus_GrantsOneCredit(t *testing.T) {
	m := &repoMock{
		claimFn: func(ctx context.Context, memberID uuid.UUID, amount int) (*model.LedgerEntry, error) {
			if amount != 1 {
				t.Fatalf("daily bonus amount = %d; want 1", amount)
			}
			return &model.LedgerEntry{Amount: amount, EntryType: model.LedgerDailyBonus}, nil
		},
	}
	s := ledgersvc.New(m)
	if _, err := s.ClaimDailyBonus(context.Background(), uuid.New()); err != nil {
		t.Fatal(err)
	}
}

func TestBalance_PassThrough(t *testing.T) {
	m := &repoMock{
		balanceFn: func(ctx context.Context, memberID uuid.UUID) (int, error) { return 42, nil },
	}
	s := ledgersvc.New(m)
	if bal, err := s.Balance(context.Background(), uuid.New()); err != nil || bal != 42 {
		t.Fatalf("got %d %v; want 42 nil", bal, err)
	}
}
