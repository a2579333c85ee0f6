package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"seabreeze/internal/domain/availability"
	domainbooking "seabreeze/internal/domain/booking"
	domaincatalog "seabreeze/internal/domain/catalog"
	domainpricing "seabreeze/internal/domain/pricing"
	domainrebooking "seabreeze/internal/domain/rebooking"
)

// respondError maps domain sentinels to HTTP statuses. Anything unmapped is
// treated as an internal failure.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainrebooking.ErrNotFound),
		errors.Is(err, domaincatalog.ErrUnitNotFound),
		errors.Is(err, domaincatalog.ErrRateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, availability.ErrConflict),
		errors.Is(err, domainrebooking.ErrOutstandingExists),
		errors.Is(err, domainrebooking.ErrInvalidTransition),
		errors.Is(err, domainbooking.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, domainbooking.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainpricing.ErrInvalidGuests),
		errors.Is(err, domainpricing.ErrNoItems):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
