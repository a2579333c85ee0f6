package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"seabreeze/internal/app/commands"
	"seabreeze/internal/app/dto"
	RebookingApp "seabreeze/internal/app/handlers/rebooking"
	"seabreeze/internal/app/queries"
)

type RebookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createRebookingRequest struct {
	BookingID string        `json:"booking_id"`
	CheckIn   time.Time     `json:"check_in"`
	CheckOut  time.Time     `json:"check_out"`
	OpenEnded bool          `json:"open_ended"`
	Adults    int           `json:"adults"`
	Children  int           `json:"children"`
	Items     []itemRequest `json:"items"`
}

func (h RebookingHandler) Create(c *gin.Context) {
	var req createRebookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := RebookingApp.CreateRebookingCommand{
		RebookingID: uuid.NewString(),
		BookingID:   req.BookingID,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		OpenEnded:   req.OpenEnded,
		Adults:      req.Adults,
		Children:    req.Children,
		Items:       mapRebookingItems(req.Items),
		RequestID:   c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[RebookingApp.CreateRebookingCommand, *dto.RebookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type updateRebookingRequest struct {
	CheckIn   time.Time     `json:"check_in"`
	CheckOut  time.Time     `json:"check_out"`
	OpenEnded bool          `json:"open_ended"`
	Adults    int           `json:"adults"`
	Children  int           `json:"children"`
	Items     []itemRequest `json:"items"`
}

func (h RebookingHandler) Update(c *gin.Context) {
	var req updateRebookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := RebookingApp.UpdateRebookingCommand{
		RebookingID: c.Param("id"),
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		OpenEnded:   req.OpenEnded,
		Adults:      req.Adults,
		Children:    req.Children,
		Items:       mapRebookingItems(req.Items),
		RequestID:   c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[RebookingApp.UpdateRebookingCommand, *dto.RebookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type approveRebookingRequest struct {
	Fee      int64  `json:"fee"`
	Currency string `json:"currency"`
}

func (h RebookingHandler) Approve(c *gin.Context) {
	var req approveRebookingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := RebookingApp.ApproveRebookingCommand{
		RebookingID: c.Param("id"),
		Fee:         req.Fee,
		Currency:    req.Currency,
		RequestID:   c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[RebookingApp.ApproveRebookingCommand, *dto.RebookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RebookingHandler) Reject(c *gin.Context) {
	cmd := RebookingApp.RejectRebookingCommand{RebookingID: c.Param("id"), RequestID: c.GetHeader("Idempotency-Key")}
	result, err := commands.Dispatch[RebookingApp.RejectRebookingCommand, *dto.RebookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RebookingHandler) Cancel(c *gin.Context) {
	cmd := RebookingApp.CancelRebookingCommand{RebookingID: c.Param("id"), RequestID: c.GetHeader("Idempotency-Key")}
	result, err := commands.Dispatch[RebookingApp.CancelRebookingCommand, *dto.RebookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RebookingHandler) Complete(c *gin.Context) {
	cmd := RebookingApp.CompleteRebookingCommand{RebookingID: c.Param("id"), RequestID: c.GetHeader("Idempotency-Key")}
	result, err := commands.Dispatch[RebookingApp.CompleteRebookingCommand, *dto.RebookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RebookingHandler) Get(c *gin.Context) {
	q := RebookingApp.GetRebookingQuery{RebookingID: c.Param("id")}
	result, err := queries.Ask[RebookingApp.GetRebookingQuery, dto.RebookingView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func mapRebookingItems(items []itemRequest) []RebookingApp.ItemInput {
	out := make([]RebookingApp.ItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, RebookingApp.ItemInput{UnitID: item.UnitID, RateID: item.RateID, Guests: item.Guests})
	}
	return out
}

var _ RebookingHTTP = RebookingHandler{}
