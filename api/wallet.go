package api

import (
	"net/http"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/Domenick1991/gymvisits/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WalletHandler struct {
	wallets repository.WalletRepository
}

func NewWalletHandler(wallets repository.WalletRepository) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

func (h *WalletHandler) Register(router *gin.RouterGroup) {
	router.GET("/users/:id/wallet", h.balance)
}

func (h *WalletHandler) balance(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, domain.ErrInvalidInput)
		return
	}

	wallet, err := h.wallets.GetBalance(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": wallet.UserID.String(), "balance_credits": wallet.BalanceCredits})
}
