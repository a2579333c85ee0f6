package dto

import (
	"time"

	domainbooking "seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/pricing"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type StayDTO struct {
	CheckIn   time.Time  `json:"check_in"`
	CheckOut  *time.Time `json:"check_out,omitempty"`
	OpenEnded bool       `json:"open_ended,omitempty"`
}

type BookingView struct {
	ID        string            `json:"id"`
	GuestID   string            `json:"guest_id"`
	Mode      string            `json:"mode"`
	Stay      StayDTO           `json:"stay"`
	Adults    int               `json:"adults"`
	Children  int               `json:"children"`
	Price     pricing.Breakdown `json:"price"`
	Paid      MoneyDTO          `json:"paid"`
	Balance   MoneyDTO          `json:"balance"`
	FullyPaid bool              `json:"fully_paid"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

func MapStay(stay daterange.Stay) StayDTO {
	out := StayDTO{CheckIn: stay.CheckIn, OpenEnded: stay.Open}
	if !stay.Open {
		checkOut := stay.CheckOut
		out.CheckOut = &checkOut
	}
	return out
}

func MapBooking(b *domainbooking.Booking) BookingView {
	return BookingView{
		ID:        string(b.ID),
		GuestID:   b.GuestID,
		Mode:      string(b.Mode),
		Stay:      MapStay(b.Stay),
		Adults:    b.Adults,
		Children:  b.Children,
		Price:     b.Price.Copy(),
		Paid:      MapMoney(b.Paid),
		Balance:   MapMoney(b.Balance),
		FullyPaid: b.FullyPaid,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
