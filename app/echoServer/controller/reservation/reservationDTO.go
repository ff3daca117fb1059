package reservation

import "time"

type CreateReservationReq struct {
	BookID    int64     `json:"book_id" validate:"required,gt=0"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}
