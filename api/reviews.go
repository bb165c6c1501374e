package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/Domenick1991/gymvisits/internal/service/reviews"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	service reviews.ReviewUseCase
}

type submitReviewRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        string `json:"id"`
	BookingID string `json:"booking_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

func NewReviewHandler(service reviews.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Register(router *gin.RouterGroup) {
	router.GET("/bookings/:id/review-eligibility", h.eligibility)
	router.POST("/bookings/:id/reviews", h.submit)
}

func (h *ReviewHandler) eligibility(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, domain.ErrInvalidInput)
		return
	}

	eligible, err := h.service.CanReview(c.Request.Context(), bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eligible": eligible})
}

func (h *ReviewHandler) submit(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, domain.ErrInvalidInput)
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(c, domain.ErrInvalidInput)
		return
	}

	review, err := h.service.SubmitReview(c.Request.Context(), reviews.SubmitReviewInput{
		BookingID: bookingID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reviewResponse{
		ID:        review.ID.String(),
		BookingID: review.BookingID.String(),
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt.Format(time.RFC3339),
	})
}
