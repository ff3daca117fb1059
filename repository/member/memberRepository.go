package memberrepo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vijender883/bookyard/model"
)

var ErrUsernameTaken = errors.New("username already taken")

type Repo interface {
	// Upsert inserts the member if the id is new and is a no-op
	// otherwise. Reports whether a row was created.
	Upsert(ctx context.Context, m *model.Member) (created bool, err error)
	ByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	SetGuardian(ctx context.Context, memberID uuid.UUID, guardianID *uuid.UUID) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Upsert(ctx context.Context, m *model.Member) (bool, error) {
	const q = `
		INSERT INTO members (id, username, full_name, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, q, m.ID, m.Username, m.FullName, m.AvatarURL, m.Role)
	if err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return false, derr
		}
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(strings.ToLower(pgErr.ConstraintName), "username") {
			return ErrUsernameTaken
		}
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	const q = `
		SELECT id, username, full_name, avatar_url, role, parent_id, created_at, updated_at
		FROM members
		WHERE id = $1`
	var m model.Member
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Username, &m.FullName, &m.AvatarURL, &m.Role, &m.ParentID,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) SetGuardian(ctx context.Context, memberID uuid.UUID, guardianID *uuid.UUID) error {
	const q = `
		UPDATE members
		SET parent_id  = $2,
			updated_at = NOW()
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, memberID, guardianID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
