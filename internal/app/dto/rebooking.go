package dto

import (
	"time"

	"seabreeze/internal/domain/pricing"
	domainrebooking "seabreeze/internal/domain/rebooking"
)

type RebookingView struct {
	ID               string            `json:"id"`
	BookingID        string            `json:"booking_id"`
	Mode             string            `json:"mode"`
	Stay             StayDTO           `json:"stay"`
	Adults           int               `json:"adults"`
	Children         int               `json:"children"`
	Price            pricing.Breakdown `json:"price"`
	OriginalAmount   MoneyDTO          `json:"original_amount"`
	NewAmount        MoneyDTO          `json:"new_amount"`
	AmountDifference MoneyDTO          `json:"amount_difference"`
	Fee              MoneyDTO          `json:"rebooking_fee"`
	TotalAdjustment  MoneyDTO          `json:"total_adjustment"`
	Status           string            `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
}

func MapRebooking(r *domainrebooking.Rebooking) RebookingView {
	view := RebookingView{
		ID:               string(r.ID),
		BookingID:        string(r.BookingID),
		Mode:             string(r.Mode),
		Stay:             MapStay(r.Stay),
		Adults:           r.Adults,
		Children:         r.Children,
		Price:            r.Price.Copy(),
		OriginalAmount:   MapMoney(r.OriginalAmount),
		NewAmount:        MapMoney(r.NewAmount),
		AmountDifference: MapMoney(r.AmountDifference),
		Fee:              MapMoney(r.Fee),
		TotalAdjustment:  MapMoney(r.TotalAdjustment),
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt,
	}
	if !r.ApprovedAt.IsZero() {
		at := r.ApprovedAt
		view.ApprovedAt = &at
	}
	if !r.CompletedAt.IsZero() {
		at := r.CompletedAt
		view.CompletedAt = &at
	}
	return view
}
