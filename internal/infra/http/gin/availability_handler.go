package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"seabreeze/internal/app/dto"
	AvailabilityApp "seabreeze/internal/app/handlers/availability"
	"seabreeze/internal/app/queries"
	"seabreeze/internal/domain/availability"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	q := AvailabilityApp.CheckAvailabilityQuery{
		UnitID: c.Param("id"),
		Mode:   c.Query("mode"),
	}
	var err error
	if q.CheckIn, err = parseDate(c.Query("check_in")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in"})
		return
	}
	if raw := c.Query("check_out"); raw != "" {
		if q.CheckOut, err = parseDate(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out"})
			return
		}
	}
	q.OpenEnded = c.Query("open_ended") == "true"

	available, err := queries.Ask[AvailabilityApp.CheckAvailabilityQuery, bool](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit_id": c.Param("id"), "available": available})
}

func (h AvailabilityHandler) MonthOverview(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	q := AvailabilityApp.MonthOverviewQuery{Year: year, Month: month}
	result, err := queries.Ask[AvailabilityApp.MonthOverviewQuery, dto.MonthOverview](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) DayView(c *gin.Context) {
	day, err := parseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	q := AvailabilityApp.DayViewQuery{Date: day}
	result, err := queries.Ask[AvailabilityApp.DayViewQuery, dto.DayView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(availability.DateKey, raw)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
