package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"seabreeze/internal/app/commands"
	"seabreeze/internal/app/dto"
	BookingApp "seabreeze/internal/app/handlers/booking"
	"seabreeze/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type itemRequest struct {
	UnitID string `json:"unit_id"`
	RateID string `json:"rate_id"`
	Guests int    `json:"guests"`
}

type quoteAndBookRequest struct {
	GuestID   string        `json:"guest_id"`
	Mode      string        `json:"mode"`
	CheckIn   time.Time     `json:"check_in"`
	CheckOut  time.Time     `json:"check_out"`
	OpenEnded bool          `json:"open_ended"`
	Adults    int           `json:"adults"`
	Children  int           `json:"children"`
	Items     []itemRequest `json:"items"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req quoteAndBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.QuoteAndBookCommand{
		BookingID: uuid.NewString(),
		GuestID:   req.GuestID,
		Mode:      req.Mode,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		OpenEnded: req.OpenEnded,
		Adults:    req.Adults,
		Children:  req.Children,
		Items:     mapItems(req.Items),
		RequestID: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.QuoteAndBookCommand, *dto.BookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type updateBookingRequest struct {
	CheckIn   time.Time     `json:"check_in"`
	CheckOut  time.Time     `json:"check_out"`
	OpenEnded bool          `json:"open_ended"`
	Adults    int           `json:"adults"`
	Children  int           `json:"children"`
	Items     []itemRequest `json:"items"`
}

func (h BookingHandler) Update(c *gin.Context) {
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.UpdateBookingCommand{
		BookingID: c.Param("id"),
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		OpenEnded: req.OpenEnded,
		Adults:    req.Adults,
		Children:  req.Children,
		Items:     mapItems(req.Items),
		RequestID: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.UpdateBookingCommand, *dto.BookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Confirm(c *gin.Context) {
	cmd := BookingApp.ConfirmBookingCommand{BookingID: c.Param("id"), RequestID: c.GetHeader("Idempotency-Key")}
	result, err := commands.Dispatch[BookingApp.ConfirmBookingCommand, *dto.BookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := BookingApp.CancelBookingCommand{BookingID: c.Param("id"), Reason: req.Reason, RequestID: c.GetHeader("Idempotency-Key")}
	result, err := commands.Dispatch[BookingApp.CancelBookingCommand, *dto.BookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) CheckIn(c *gin.Context) {
	cmd := BookingApp.CheckInCommand{BookingID: c.Param("id"), RequestID: c.GetHeader("Idempotency-Key")}
	result, err := commands.Dispatch[BookingApp.CheckInCommand, *dto.BookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) CheckOut(c *gin.Context) {
	cmd := BookingApp.CheckOutCommand{BookingID: c.Param("id"), RequestID: c.GetHeader("Idempotency-Key")}
	result, err := commands.Dispatch[BookingApp.CheckOutCommand, *dto.BookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type recordPaymentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (h BookingHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.RecordPaymentCommand{
		BookingID: c.Param("id"),
		Amount:    req.Amount,
		Currency:  req.Currency,
		RequestID: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.RecordPaymentCommand, *dto.BookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) List(c *gin.Context) {
	q := BookingApp.ListBookingsQuery{GuestID: c.Query("guest_id")}
	result, err := queries.Ask[BookingApp.ListBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	q := BookingApp.GetBookingQuery{BookingID: c.Param("id")}
	result, err := queries.Ask[BookingApp.GetBookingQuery, dto.BookingView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func mapItems(items []itemRequest) []BookingApp.ItemInput {
	out := make([]BookingApp.ItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, BookingApp.ItemInput{UnitID: item.UnitID, RateID: item.RateID, Guests: item.Guests})
	}
	return out
}

var _ BookingHTTP = BookingHandler{}
