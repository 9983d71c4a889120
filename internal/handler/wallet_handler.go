package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifeevents/les/internal/logic"
	"github.com/lifeevents/les/internal/wallet"
	"gorm.io/gorm"
)

// WalletHandler serves wallet session and balance endpoints. The chain
// client is owned by main and passed in; it may be nil when no RPC is
// configured, in which case balance lookups are unavailable.
type WalletHandler struct {
	profileLogic *logic.ProfileLogic
	chainClient  *wallet.Client
}

// NewWalletHandler creates the wallet handler.
func NewWalletHandler(db *gorm.DB, chainClient *wallet.Client) *WalletHandler {
	return &WalletHandler{
		profileLogic: logic.NewProfileLogic(db),
		chainClient:  chainClient,
	}
}

// Session resolves a connected wallet to its deterministic organizer
// identity, creating the profile on first contact.
func (h *WalletHandler) Session(c *gin.Context) {
	var req WalletSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet_address is required"})
		return
	}

	organizerId := wallet.DeriveOrganizerId(req.WalletAddress)

	profile, err := h.profileLogic.EnsureForWallet(req.WalletAddress, organizerId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizer_id": profile.OrganizerId,
		"profile":      ToProfileResponse(profile),
	})
}

// Balance reads the wallet's platform token balance from the chain.
func (h *WalletHandler) Balance(c *gin.Context) {
	if h.chainClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chain client not configured"})
		return
	}

	balance, err := h.chainClient.TokenBalance(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": c.Param("address"),
		"balance": balance.String(),
	})
}
