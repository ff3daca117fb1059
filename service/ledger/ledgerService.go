package ledgersvc

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
	lrepo "github.com/vijender883/bookyard/repository/ledger"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAlreadyClaimed      = errors.New("daily bonus already claimed")
	ErrBadAmount           = errors.New("amount must not be zero")
)

const (
	dailyBonusCredits = 1
	shareBonusCredits = 2
)

type Repo interface {
	Record(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) (*model.LedgerEntry, error)
	ClaimDailyBonus(ctx context.Context, memberID uuid.UUID, amount int) (*model.LedgerEntry, error)
	BalanceOf(ctx context.Context, memberID uuid.UUID) (int, error)
	Entries(ctx context.Context, memberID uuid.UUID) ([]model.LedgerEntry, error)
}

type Service interface {
	Balance(ctx context.Context, memberID uuid.UUID) (int, error)
	Entries(ctx context.Context, memberID uuid.UUID) ([]model.LedgerEntry, error)
	ClaimDailyBonus(ctx context.Context, memberID uuid.UUID) (*model.LedgerEntry, error)
	// GrantShareBonus credits the owner for putting a book up for
	// sharing.
	GrantShareBonus(ctx context.Context, memberID uuid.UUID, description string) (*model.LedgerEntry, error)
	Adjust(ctx context.Context, memberID uuid.UUID, amount int, description string) (*model.LedgerEntry, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Balance(ctx context.Context, memberID uuid.UUID) (int, error) {
	return s.r.BalanceOf(ctx, memberID)
}

func (s *service) Entries(ctx context.Context, memberID uuid.UUID) ([]model.LedgerEntry, error) {
	return s.r.Entries(ctx, memberID)
}

func (s *service) ClaimDailyBonus(ctx context.Context, memberID uuid.UUID) (*model.LedgerEntry, error) {
	e, err := s.r.ClaimDailyBonus(ctx, memberID, dailyBonusCredits)
	if err != nil {
		if errors.Is(err, lrepo.ErrAlreadyClaimed) {
			return nil, ErrAlreadyClaimed
		}
		return nil, err
	}
	return e, nil
}

func (s *service) GrantShareBonus(ctx context.Context, memberID uuid.UUID, description string) (*model.LedgerEntry, error) {
	return s.r.Record(ctx, memberID, shareBonusCredits, model.LedgerShareBonus, description)
}

func (s *service) Adjust(ctx context.Context, memberID uuid.UUID, amount int, description string) (*model.LedgerEntry, error) {
	if amount == 0 {
		return nil, ErrBadAmount
	}
	e, err := s.r.Record(ctx, memberID, amount, model.LedgerAdjustment, description)
	if err != nil {
		if errors.Is(err, lrepo.ErrInsufficient) {
			return nil, ErrInsufficientCredits
		}
		return nil, err
	}
	return e, nil
}
