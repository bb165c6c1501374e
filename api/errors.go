package api

import (
	"net/http"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/gin-gonic/gin"
)

// Every domain error surfaces as {"error": {"code", "message"}} with a
// stable machine-readable code, so UI callers can map codes to messages
// without string matching.
func writeError(c *gin.Context, err error) {
	code := domain.ErrorCode(err)
	c.JSON(statusForCode(code), gin.H{"error": gin.H{"code": code, "message": err.Error()}})
}

func statusForCode(code string) int {
	switch code {
	case "INVALID_INPUT", "INVALID_TIME_FORMAT", "INVALID_DATE", "PAST_SCHEDULED_TIME":
		return http.StatusBadRequest
	case "BOOKING_NOT_FOUND", "BRANCH_NOT_FOUND", "WALLET_NOT_FOUND":
		return http.StatusNotFound
	case "BRANCH_UNAVAILABLE", "NO_ELIGIBLE_SUBSCRIPTION", "BOOKING_NOT_ELIGIBLE_FOR_REVIEW":
		return http.StatusUnprocessableEntity
	case "SUBSCRIPTION_EXHAUSTED", "INSUFFICIENT_CREDITS", "RESOURCE_CONFLICT", "REVIEW_ALREADY_EXISTS":
		return http.StatusConflict
	case "SUBSCRIPTION_LOOKUP_UNAVAILABLE":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
