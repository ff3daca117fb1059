package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
	bookrepo "github.com/vijender883/bookyard/repository/book"
)

var (
	ErrBadInput = errors.New("invalid payload")
	ErrNotFound = errors.New("book not found")
)

type ListFilter = bookrepo.ListFilter

// Notifier receives after-commit listing events, best-effort.
type Notifier interface {
	BookListed(actorID uuid.UUID, bookID int64, title string, intent model.Intent)
}

// Rewards grants listing perks on the credit ledger.
type Rewards interface {
	GrantShareBonus(ctx context.Context, memberID uuid.UUID, description string) (*model.LedgerEntry, error)
}

type Service interface {
	Create(ctx context.Context, b *model.Book) (*model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context, f ListFilter) ([]model.Book, error)
	// Update replaces the mutable fields of a book; ownership checks
	// happen at the access gate before this is called.
	Update(ctx context.Context, b *model.Book) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	Owner(ctx context.Context, id int64) (uuid.UUID, error)

	Categories(ctx context.Context) ([]model.Category, error)
}

type service struct {
	r       bookrepo.Repo
	feed    Notifier
	rewards Rewards
	log     *slog.Logger
}

func New(r bookrepo.Repo, feed Notifier, rewards Rewards, log *slog.Logger) Service {
	return &service{r: r, feed: feed, rewards: rewards, log: log}
}

func (s *service) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	if b.Title == "" || b.Author == "" || b.StockCount < 0 {
		return nil, ErrBadInput
	}
	switch b.Intent {
	case model.IntentGiveaway, model.IntentSell, model.IntentShare:
	default:
		return nil, ErrBadInput
	}

	id, err := s.r.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	b.ID = id

	if b.Intent == model.IntentShare {
		// A failed perk never undoes the listing.
		if _, err := s.rewards.GrantShareBonus(ctx, b.OwnerID,
			fmt.Sprintf("share bonus for %q", b.Title)); err != nil {
			s.log.Warn("share bonus grant failed", "book_id", id, "owner", b.OwnerID, "err", err)
		}
	}
	s.feed.BookListed(b.OwnerID, id, b.Title, b.Intent)

	return s.Detail(ctx, id)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]model.Book, error) {
	return s.r.List(ctx, f)
}

func (s *service) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	if b.Title == "" || b.Author == "" || b.StockCount < 0 {
		return nil, ErrBadInput
	}
	if err := s.r.Update(ctx, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Detail(ctx, b.ID)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *service) Owner(ctx context.Context, id int64) (uuid.UUID, error) {
	owner, err := s.r.Owner(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}
	return owner, nil
}

func (s *service) Categories(ctx context.Context) ([]model.Category, error) {
	return s.r.ListCategories(ctx)
}
