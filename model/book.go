// model/book.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Intent string

const (
	IntentGiveaway Intent = "giveaway"
	IntentSell     Intent = "sell"
	IntentShare    Intent = "share"
)

type Book struct {
	ID            int64     `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   *string   `json:"description,omitempty"`
	ISBN          *string   `json:"isbn,omitempty"`
	PublishedYear *int      `json:"published_year,omitempty"`
	Pages         *int      `json:"pages,omitempty"`
	Price         *float64  `json:"price,omitempty"`
	CategoryID    *int64    `json:"category_id,omitempty"`
	Intent        Intent    `json:"intent"`
	// StockCount is the concurrency budget: number of copies that may be
	// pending-or-active at once. Never negative.
	StockCount int       `json:"stock_count"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
