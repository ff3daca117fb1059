package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
)

var (
	ErrInsufficient   = errors.New("insufficient credits")
	ErrAlreadyClaimed = errors.New("bonus already claimed today")
)

type Repo interface {
	// Record appends one entry. A negative amount that would drive the
	// member's balance below zero fails with ErrInsufficient and writes
	// nothing. The member row lock serializes concurrent records.
	Record(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) (*model.LedgerEntry, error)

	// ClaimDailyBonus records one daily_bonus entry per member per UTC
	// day; a second claim the same day fails with ErrAlreadyClaimed.
	ClaimDailyBonus(ctx context.Context, memberID uuid.UUID, amount int) (*model.LedgerEntry, error)

	BalanceOf(ctx context.Context, memberID uuid.UUID) (int, error)
	Entries(ctx context.Context, memberID uuid.UUID) ([]model.LedgerEntry, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Record(ctx context.Context, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) (e *model.LedgerEntry, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockMember(ctx, tx, memberID); err != nil {
		return nil, err
	}
	if amount < 0 {
		var bal int
		if bal, err = sumEntries(ctx, tx, memberID); err != nil {
			return nil, err
		}
		if bal+amount < 0 {
			err = ErrInsufficient
			return nil, err
		}
	}
	if e, err = insertEntry(ctx, tx, memberID, amount, entryType, description); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repo) ClaimDailyBonus(ctx context.Context, memberID uuid.UUID, amount int) (e *model.LedgerEntry, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockMember(ctx, tx, memberID); err != nil {
		return nil, err
	}

	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM credit_ledger
			WHERE member_id = $1
			AND entry_type = $2
			AND created_at >= DATE_TRUNC('day', NOW() AT TIME ZONE 'utc')
		)`
	var claimed bool
	if err = tx.QueryRowContext(ctx, q, memberID, model.LedgerDailyBonus).Scan(&claimed); err != nil {
		return nil, err
	}
	if claimed {
		err = ErrAlreadyClaimed
		return nil, err
	}

	if e, err = insertEntry(ctx, tx, memberID, amount, model.LedgerDailyBonus, "daily bonus"); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repo) BalanceOf(ctx context.Context, memberID uuid.UUID) (int, error) {
	const q = `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_ledger
		WHERE member_id = $1`
	var bal int
	err := r.db.QueryRowContext(ctx, q, memberID).Scan(&bal)
	return bal, err
}

func (r *repo) Entries(ctx context.Context, memberID uuid.UUID) ([]model.LedgerEntry, error) {
	const q = `
		SELECT id, member_id, amount, entry_type, description, created_at
		FROM credit_ledger
		WHERE member_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Amount, &e.EntryType, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func lockMember(ctx context.Context, tx *sql.Tx, memberID uuid.UUID) error {
	const q = `
		SELECT id
		FROM members
		WHERE id = $1
		FOR UPDATE`
	var id uuid.UUID
	return tx.QueryRowContext(ctx, q, memberID).Scan(&id)
}

func sumEntries(ctx context.Context, tx *sql.Tx, memberID uuid.UUID) (int, error) {
	const q = `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_ledger
		WHERE member_id = $1`
	var bal int
	err := tx.QueryRowContext(ctx, q, memberID).Scan(&bal)
	return bal, err
}

func insertEntry(ctx context.Context, tx *sql.Tx, memberID uuid.UUID, amount int, entryType model.LedgerType, description string) (*model.LedgerEntry, error) {
	const q = `
		INSERT INTO credit_ledger (member_id, amount, entry_type, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	e := &model.LedgerEntry{
		MemberID:    memberID,
		Amount:      amount,
		EntryType:   entryType,
		Description: description,
	}
	if err := tx.QueryRowContext(ctx, q, memberID, amount, entryType, description).Scan(&e.ID, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}
