package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifeevents/les/internal/logic"
	"gorm.io/gorm"
)

// ProfileHandler serves wallet profile endpoints.
type ProfileHandler struct {
	profileLogic *logic.ProfileLogic
}

// NewProfileHandler creates the profile handler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{
		profileLogic: logic.NewProfileLogic(db),
	}
}

// GetProfile fetches the profile for a wallet address.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileLogic.GetByWallet(c.Param("wallet"))
	if err != nil {
		if errors.Is(err, logic.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": ToProfileResponse(profile)})
}

// UpdateProfile updates display name and avatar for a wallet's profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var updateData struct {
		DisplayName *string `json:"display_name"`
		AvatarURL   *string `json:"avatar_url"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make(map[string]interface{})
	if updateData.DisplayName != nil {
		updates["display_name"] = *updateData.DisplayName
	}
	if updateData.AvatarURL != nil {
		updates["avatar_url"] = *updateData.AvatarURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.profileLogic.Update(c.Param("wallet"), updates); err != nil {
		if errors.Is(err, logic.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}
