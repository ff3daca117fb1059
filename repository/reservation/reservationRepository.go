package reservationrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
)

// Sentinel errors mapped to engine error codes by the service layer.
var (
	ErrNoCapacity = errors.New("no capacity")
)

type HistoryRow struct {
	ReservationID int64                   `json:"reservation_id"`
	BookID        int64                   `json:"book_id"`
	BookTitle     string                  `json:"book_title"`
	Status        model.ReservationStatus `json:"status"`
	StartDate     time.Time               `json:"start_date"`
	EndDate       time.Time               `json:"end_date"`
	CreditsUsed   int                     `json:"credits_used"`
	CreatedAt     time.Time               `json:"created_at"`
}

// Tx is the set of row operations available inside one engine
// transaction. Every mutation of a create/confirm/cancel/complete
// flow goes through a single Tx so the effects commit or roll back
// together.
type Tx interface {
	// GetBookForUpdate locks the book row and returns it.
	GetBookForUpdate(ctx context.Context, bookID int64) (*model.Book, error)

	// ReserveCapacity decrements stock_count by one, guarded on
	// is_active and stock_count > 0. Returns ErrNoCapacity (and has no
	// side effect) when the guard fails.
	ReserveCapacity(ctx context.Context, bookID int64) error
	ReleaseCapacity(ctx context.Context, bookID int64) error

	// LockMemberBalance serializes balance computation per member: it
	// takes a row lock on the member and returns the derived sum of
	// their ledger entries.
	LockMemberBalance(ctx context.Context, memberID uuid.UUID) (int, error)
	InsertLedgerEntry(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) error

	InsertReservation(ctx context.Context, r *model.Reservation) (int64, error)
	GetReservationForUpdate(ctx context.Context, id int64) (*model.Reservation, error)
	SetReservationStatus(ctx context.Context, id int64, status model.ReservationStatus) error
}

type Store interface {
	// ExecTx runs fn inside one database transaction. fn returning an
	// error rolls everything back.
	ExecTx(ctx context.Context, fn func(tx Tx) error) error

	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	// GetBookOwner resolves the listing owner for a reservation,
	// used by the access gate before confirm/complete.
	GetBookOwner(ctx context.Context, bookID int64) (uuid.UUID, error)
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]HistoryRow, error)
}

type store struct{ db *sql.DB }

func New(db *sql.DB) Store { return &store{db: db} }

func (s *store) ExecTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = dbtx.Rollback()
		}
	}()
	if err = fn(&pgTx{tx: dbtx}); err != nil {
		return err
	}
	return dbtx.Commit()
}

func (s *store) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	const q = `
		SELECT id, book_id, borrower_id, status, start_date, end_date, credits_used, created_at, updated_at
		FROM reservations
		WHERE id = $1`
	return scanReservation(s.db.QueryRowContext(ctx, q, id))
}

func (s *store) GetBookOwner(ctx context.Context, bookID int64) (uuid.UUID, error) {
	const q = `
		SELECT owner_id
		FROM books
		WHERE id = $1`
	var owner uuid.UUID
	err := s.db.QueryRowContext(ctx, q, bookID).Scan(&owner)
	return owner, err
}

func (s *store) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]HistoryRow, error) {
	const q = `
		SELECT
			r.id           AS reservation_id,
			r.book_id      AS book_id,
			b.title        AS book_title,
			r.status       AS status,
			r.start_date   AS start_date,
			r.end_date     AS end_date,
			r.credits_used AS credits_used,
			r.created_at   AS created_at
		FROM reservations r
		JOIN books b ON b.id = r.book_id
		WHERE r.borrower_id = $1
		ORDER BY r.created_at DESC, r.id DESC`
	rows, err := s.db.QueryContext(ctx, q, borrowerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.ReservationID, &h.BookID, &h.BookTitle, &h.Status,
			&h.StartDate, &h.EndDate, &h.CreditsUsed, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// pgTx implements Tx on top of one *sql.Tx.

type pgTx struct{ tx *sql.Tx }

func (t *pgTx) GetBookForUpdate(ctx context.Context, bookID int64) (*model.Book, error) {
	const q = `
		SELECT id, owner_id, title, author, description, isbn, published_year,
		       pages, price, category_id, intent, stock_count, is_active,
		       created_at, updated_at
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var b model.Book
	err := t.tx.QueryRowContext(ctx, q, bookID).Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Description, &b.ISBN,
		&b.PublishedYear, &b.Pages, &b.Price, &b.CategoryID, &b.Intent,
		&b.StockCount, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *pgTx) ReserveCapacity(ctx context.Context, bookID int64) error {
	// Guarded decrement: the WHERE clause is the whole availability
	// check, so concurrent reservers can never drive stock negative.
	const q = `
		UPDATE books
		SET stock_count = stock_count - 1,
			updated_at  = NOW()
		WHERE id = $1
		AND is_active
		AND stock_count > 0`
	res, err := t.tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoCapacity
	}
	return nil
}

func (t *pgTx) ReleaseCapacity(ctx context.Context, bookID int64) error {
	const q = `
		UPDATE books
		SET stock_count = stock_count + 1,
			updated_at  = NOW()
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, bookID)
	return err
}

func (t *pgTx) LockMemberBalance(ctx context.Context, memberID uuid.UUID) (int, error) {
	const lock = `
		SELECT id
		FROM members
		WHERE id = $1
		FOR UPDATE`
	var id uuid.UUID
	if err := t.tx.QueryRowContext(ctx, lock, memberID).Scan(&id); err != nil {
		return 0, err
	}
	const sum = `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_ledger
		WHERE member_id = $1`
	var bal int
	err := t.tx.QueryRowContext(ctx, sum, memberID).Scan(&bal)
	return bal, err
}

func (t *pgTx) InsertLedgerEntry(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) error {
	const q = `
		INSERT INTO credit_ledger (member_id, amount, entry_type, description)
		VALUES ($1, $2, $3, $4)`
	_, err := t.tx.ExecContext(ctx, q, memberID, amount, entryType, description)
	return err
}

func (t *pgTx) InsertReservation(ctx context.Context, r *model.Reservation) (int64, error) {
	const q = `
		INSERT INTO reservations (book_id, borrower_id, status, start_date, end_date, credits_used)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	var id int64
	err := t.tx.QueryRowContext(ctx, q,
		r.BookID, r.BorrowerID, r.Status, r.StartDate, r.EndDate, r.CreditsUsed,
	).Scan(&id)
	return id, err
}

func (t *pgTx) GetReservationForUpdate(ctx context.Context, id int64) (*model.Reservation, error) {
	// Row lock linearizes transitions per reservation.
	const q = `
		SELECT id, book_id, borrower_id, status, start_date, end_date, credits_used, created_at, updated_at
		FROM reservations
		WHERE id = $1
		FOR UPDATE`
	return scanReservation(t.tx.QueryRowContext(ctx, q, id))
}

func (t *pgTx) SetReservationStatus(ctx context.Context, id int64, status model.ReservationStatus) error {
	const q = `
		UPDATE reservations
		SET status     = $2,
			updated_at = NOW()
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, id, status)
	return err
}

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(
		&r.ID, &r.BookID, &r.BorrowerID, &r.Status,
		&r.StartDate, &r.EndDate, &r.CreditsUsed, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
