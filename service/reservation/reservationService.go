package reservationsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
	rrepo "github.com/vijender883/bookyard/repository/reservation"
	"github.com/vijender883/bookyard/util/metrics"
)

// errors used by controllers

type ErrCode string

const (
	ErrUnavailable         ErrCode = "UNAVAILABLE"
	ErrInsufficientCredits ErrCode = "INSUFFICIENT_CREDITS"
	ErrInvalidTransition   ErrCode = "INVALID_TRANSITION"
	ErrInvalidWindow       ErrCode = "INVALID_WINDOW"
	ErrNotFound            ErrCode = "NOT_FOUND"
	ErrConflict            ErrCode = "CONFLICT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type HistoryRow = rrepo.HistoryRow

// Notifier receives after-commit events; implementations must never
// block or fail the calling operation.
type Notifier interface {
	ReservationCreated(actorID uuid.UUID, reservationID, bookID int64, bookTitle string)
}

type Service interface {
	// Create reserves one unit of the book's stock, debits the borrower
	// and persists a pending reservation, all in one transaction.
	Create(ctx context.Context, borrowerID uuid.UUID, bookID int64, start, end time.Time) (*model.Reservation, error)

	// Confirm moves pending -> active.
	Confirm(ctx context.Context, reservationID int64) (*model.Reservation, error)

	// Cancel moves pending|active -> cancelled, releases capacity and
	// refunds credits per policy.
	Cancel(ctx context.Context, reservationID int64) (*model.Reservation, error)

	// Complete moves active -> completed.
	Complete(ctx context.Context, reservationID int64) (*model.Reservation, error)

	Get(ctx context.Context, reservationID int64) (*model.Reservation, error)
	OwnerOf(ctx context.Context, bookID int64) (uuid.UUID, error)
	MyReservations(ctx context.Context, borrowerID uuid.UUID) ([]HistoryRow, error)
}

type service struct {
	store rrepo.Store
	feed  Notifier
	now   func() time.Time
}

func New(store rrepo.Store, feed Notifier) Service {
	return &service{store: store, feed: feed, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) Create(ctx context.Context, borrowerID uuid.UUID, bookID int64, start, end time.Time) (*model.Reservation, error) {
	if !end.After(start) {
		return nil, makeErr(ErrInvalidWindow)
	}

	var (
		res   *model.Reservation
		title string
	)
	err := s.store.ExecTx(ctx, func(tx rrepo.Tx) error {
		book, err := tx.GetBookForUpdate(ctx, bookID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		title = book.Title
		cost := CostFor(book.Intent, start, end)

		if err := tx.ReserveCapacity(ctx, bookID); err != nil {
			if errors.Is(err, rrepo.ErrNoCapacity) {
				return makeErr(ErrUnavailable)
			}
			return err
		}

		bal, err := tx.LockMemberBalance(ctx, borrowerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if bal < cost {
			return makeErr(ErrInsufficientCredits)
		}

		r := &model.Reservation{
			BookID:      bookID,
			BorrowerID:  borrowerID,
			Status:      model.ReservationPending,
			StartDate:   start,
			EndDate:     end,
			CreditsUsed: cost,
		}
		id, err := tx.InsertReservation(ctx, r)
		if err != nil {
			return err
		}
		r.ID = id

		if err := tx.InsertLedgerEntry(ctx, borrowerID, -cost, model.LedgerReservationSpend,
			fmt.Sprintf("reservation #%d for %q", id, title)); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		metrics.ReservationFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	metrics.ReservationsCreated.Inc()
	s.feed.ReservationCreated(borrowerID, res.ID, bookID, title)
	return res, nil
}

func (s *service) Confirm(ctx context.Context, reservationID int64) (*model.Reservation, error) {
	return s.transition(ctx, reservationID, func(tx rrepo.Tx, r *model.Reservation) error {
		if r.Status != model.ReservationPending {
			return makeErr(ErrInvalidTransition)
		}
		r.Status = model.ReservationActive
		return tx.SetReservationStatus(ctx, r.ID, r.Status)
	})
}

func (s *service) Cancel(ctx context.Context, reservationID int64) (*model.Reservation, error) {
	return s.transition(ctx, reservationID, func(tx rrepo.Tx, r *model.Reservation) error {
		if r.Status != model.ReservationPending && r.Status != model.ReservationActive {
			return makeErr(ErrInvalidTransition)
		}
		refund := refundFor(r, s.now())

		r.Status = model.ReservationCancelled
		if err := tx.SetReservationStatus(ctx, r.ID, r.Status); err != nil {
			return err
		}
		if err := tx.ReleaseCapacity(ctx, r.BookID); err != nil {
			return err
		}
		if refund > 0 {
			return tx.InsertLedgerEntry(ctx, r.BorrowerID, refund, model.LedgerReservationRefund,
				fmt.Sprintf("refund for reservation #%d", r.ID))
		}
		return nil
	})
}

func (s *service) Complete(ctx context.Context, reservationID int64) (*model.Reservation, error) {
	return s.transition(ctx, reservationID, func(tx rrepo.Tx, r *model.Reservation) error {
		if r.Status != model.ReservationActive {
			return makeErr(ErrInvalidTransition)
		}
		r.Status = model.ReservationCompleted
		return tx.SetReservationStatus(ctx, r.ID, r.Status)
	})
}

// transition runs fn under the reservation's row lock so no two
// transitions on the same reservation interleave.
func (s *service) transition(ctx context.Context, reservationID int64, fn func(tx rrepo.Tx, r *model.Reservation) error) (*model.Reservation, error) {
	var out *model.Reservation
	err := s.store.ExecTx(ctx, func(tx rrepo.Tx) error {
		r, err := tx.GetReservationForUpdate(ctx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if err := fn(tx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, reservationID int64) (*model.Reservation, error) {
	r, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return r, nil
}

func (s *service) OwnerOf(ctx context.Context, bookID int64) (uuid.UUID, error) {
	owner, err := s.store.GetBookOwner(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, makeErr(ErrNotFound)
		}
		return uuid.Nil, err
	}
	return owner, nil
}

func (s *service) MyReservations(ctx context.Context, borrowerID uuid.UUID) ([]HistoryRow, error) {
	return s.store.ListByBorrower(ctx, borrowerID)
}

func failureReason(err error) string {
	if c := Code(err); c != "" {
		return string(c)
	}
	return "INTERNAL"
}
