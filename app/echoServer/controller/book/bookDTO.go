package book

type CreateBookReq struct {
	Title         string   `json:"title" validate:"required"`
	Author        string   `json:"author" validate:"required"`
	Description   *string  `json:"description"`
	ISBN          *string  `json:"isbn"`
	PublishedYear *int     `json:"published_year"`
	Pages         *int     `json:"pages"`
	Price         *float64 `json:"price"`
	CategoryID    *int64   `json:"category_id"`
	Intent        string   `json:"intent" validate:"required,oneof=giveaway sell share"`
	StockCount    int      `json:"stock_count" validate:"gte=0"`
}

type UpdateBookReq struct {
	Title         string   `json:"title" validate:"required"`
	Author        string   `json:"author" validate:"required"`
	Description   *string  `json:"description"`
	ISBN          *string  `json:"isbn"`
	PublishedYear *int     `json:"published_year"`
	Pages         *int     `json:"pages"`
	Price         *float64 `json:"price"`
	CategoryID    *int64   `json:"category_id"`
	Intent        string   `json:"intent" validate:"required,oneof=giveaway sell share"`
	StockCount    int      `json:"stock_count" validate:"gte=0"`
	IsActive      bool     `json:"is_active"`
}
