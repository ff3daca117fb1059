package bookrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
)

type ListFilter struct {
	Search     string
	CategoryID *int64
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context, f ListFilter) ([]model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	Owner(ctx context.Context, id int64) (uuid.UUID, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
		INSERT INTO books (owner_id, title, author, description, isbn, published_year,
		                   pages, price, category_id, intent, stock_count, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,TRUE)
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		b.OwnerID, b.Title, b.Author, b.Description, b.ISBN, b.PublishedYear,
		b.Pages, b.Price, b.CategoryID, b.Intent, b.StockCount,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

const bookCols = `id, owner_id, title, author, description, isbn, published_year,
	pages, price, category_id, intent, stock_count, is_active, created_at, updated_at`

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	q := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1`, bookCols)
	return scanBook(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) List(ctx context.Context, f ListFilter) ([]model.Book, error) {
	var (
		where []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", n, n))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	q := fmt.Sprintf(`SELECT %s FROM books`, bookCols)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Description, &b.ISBN,
			&b.PublishedYear, &b.Pages, &b.Price, &b.CategoryID, &b.Intent,
			&b.StockCount, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	// id, owner_id and created_at are immutable.
	const q = `
		UPDATE books
		SET title          = $2,
			author         = $3,
			description    = $4,
			isbn           = $5,
			published_year = $6,
			pages          = $7,
			price          = $8,
			category_id    = $9,
			intent         = $10,
			stock_count    = $11,
			is_active      = $12,
			updated_at     = NOW()
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.Description, b.ISBN, b.PublishedYear,
		b.Pages, b.Price, b.CategoryID, b.Intent, b.StockCount, b.IsActive,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM books WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Owner(ctx context.Context, id int64) (uuid.UUID, error) {
	const q = `SELECT owner_id FROM books WHERE id = $1`
	var owner uuid.UUID
	err := r.db.QueryRowContext(ctx, q, id).Scan(&owner)
	return owner, err
}

func (r *repo) ListCategories(ctx context.Context) ([]model.Category, error) {
	const q = `
		SELECT id, name, description, created_at
		FROM categories
		ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanBook(row *sql.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Description, &b.ISBN,
		&b.PublishedYear, &b.Pages, &b.Price, &b.CategoryID, &b.Intent,
		&b.StockCount, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
