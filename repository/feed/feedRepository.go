package feedrepo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
)

type Repo interface {
	Insert(ctx context.Context, e *model.FeedEntry) error
	// List returns public entries plus, when viewer is non-nil, that
	// viewer's private ones.
	List(ctx context.Context, viewer *uuid.UUID, limit int) ([]model.FeedEntry, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, e *model.FeedEntry) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO feed_items (actor_id, action_type, content, metadata, is_public)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.ExecContext(ctx, q, e.ActorID, e.ActionType, e.Content, meta, e.IsPublic)
	return err
}

func (r *repo) List(ctx context.Context, viewer *uuid.UUID, limit int) ([]model.FeedEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const q = `
		SELECT id, actor_id, action_type, content, metadata, is_public, created_at
		FROM feed_items
		WHERE is_public
		OR ($1::uuid IS NOT NULL AND actor_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, viewer, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FeedEntry
	for rows.Next() {
		var (
			e    model.FeedEntry
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActionType, &e.Content, &meta, &e.IsPublic, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
