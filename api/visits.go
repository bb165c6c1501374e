package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/Domenick1991/gymvisits/internal/service/admission"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VisitHandler struct {
	service admission.AdmissionUseCase
}

type submitVisitRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	BranchID       int64  `json:"branch_id" binding:"required"`
	Date           string `json:"date" binding:"required"`
	TimeLabel      string `json:"time_label" binding:"required"`
	PaymentMode    string `json:"payment_mode"`
	IdempotencyKey string `json:"idempotency_key" binding:"required"`
}

type bookingResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	BranchID       int64   `json:"branch_id"`
	ScheduledAt    string  `json:"scheduled_at"`
	PaymentMode    string  `json:"payment_mode"`
	SubscriptionID *string `json:"subscription_id,omitempty"`
	CreditsCost    *int64  `json:"credits_cost,omitempty"`
	Status         string  `json:"status"`
	HasReview      bool    `json:"has_review"`
}

type admissionResponse struct {
	Booking  bookingResponse `json:"booking"`
	Warnings []string        `json:"warnings,omitempty"`
}

type subscriptionResponse struct {
	ID              string `json:"id"`
	BranchID        int64  `json:"branch_id"`
	PlanName        string `json:"plan_name"`
	RemainingVisits int    `json:"remaining_visits"`
	Status          string `json:"status"`
	EndDate         string `json:"end_date"`
}

func NewVisitHandler(service admission.AdmissionUseCase) *VisitHandler {
	return &VisitHandler{service: service}
}

func (h *VisitHandler) Register(router *gin.RouterGroup) {
	router.POST("/visits", h.submit)
	router.GET("/bookings/:id", h.getBooking)
	router.GET("/users/:id/branches/:branchID/subscriptions", h.subscriptions)
}

func (h *VisitHandler) getBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, domain.ErrInvalidInput)
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (h *VisitHandler) submit(c *gin.Context) {
	var req submitVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(c, domain.ErrInvalidInput)
		return
	}
	mode, ok := parsePaymentMode(req.PaymentMode)
	if !ok {
		writeError(c, domain.ErrInvalidInput)
		return
	}

	result, err := h.service.SubmitVisit(c.Request.Context(), admission.SubmitVisitInput{
		UserID:         userID,
		BranchID:       req.BranchID,
		Date:           req.Date,
		TimeLabel:      req.TimeLabel,
		RequestedMode:  mode,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, admissionResponse{
		Booking:  toBookingResponse(result.Booking),
		Warnings: result.Warnings,
	})
}

func (h *VisitHandler) subscriptions(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, domain.ErrInvalidInput)
		return
	}
	branchID, err := strconv.ParseInt(c.Param("branchID"), 10, 64)
	if err != nil {
		writeError(c, domain.ErrInvalidInput)
		return
	}

	subs, err := h.service.ActiveSubscriptions(c.Request.Context(), userID, branchID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]subscriptionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, subscriptionResponse{
			ID:              s.ID.String(),
			BranchID:        s.BranchID,
			PlanName:        s.PlanName,
			RemainingVisits: s.RemainingVisits,
			Status:          string(s.Status),
			EndDate:         s.EndDate.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func parsePaymentMode(raw string) (domain.PaymentMode, bool) {
	switch domain.PaymentMode(raw) {
	case "", domain.PaymentModeSubscription, domain.PaymentModeSingleCredit:
		return domain.PaymentMode(raw), true
	default:
		return "", false
	}
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:          b.ID.String(),
		UserID:      b.UserID.String(),
		BranchID:    b.BranchID,
		ScheduledAt: b.ScheduledAt.Format(time.RFC3339),
		PaymentMode: string(b.PaymentMode),
		CreditsCost: b.CreditsCost,
		Status:      string(b.Status),
		HasReview:   b.HasReview,
	}
	if b.SubscriptionID != nil {
		id := b.SubscriptionID.String()
		resp.SubscriptionID = &id
	}
	return resp
}
