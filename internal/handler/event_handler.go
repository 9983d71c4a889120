package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lifeevents/les/internal/logic"
	"github.com/lifeevents/les/internal/model"
	"gorm.io/gorm"
)

// EventHandler serves event CRUD and read endpoints.
type EventHandler struct {
	eventLogic  *logic.EventLogic
	ledgerLogic *logic.LedgerLogic
}

// NewEventHandler creates the event handler.
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{
		eventLogic:  logic.NewEventLogic(db),
		ledgerLogic: logic.NewLedgerLogic(db),
	}
}

// CreateEvent creates a celebration event.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := model.EventModel{
		Title:         req.Title,
		Description:   req.Description,
		EventType:     model.EventType(req.EventType),
		TargetCents:   req.TargetCents,
		ImageURL:      req.ImageURL,
		IsPrivate:     req.IsPrivate,
		OrganizerId:   req.OrganizerId,
		WalletAddress: req.WalletAddress,
	}

	if err := h.eventLogic.CreateEvent(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "event created",
		"event":   ToEventResponse(&event),
	})
}

// GetEvents lists public events, newest first.
func (h *EventHandler) GetEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	events, err := h.eventLogic.GetPublicEvents(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": ToEventResponseList(events)})
}

// GetEvent fetches one event; private events resolve via direct link.
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventLogic.GetEvent(c.Param("id"))
	if err != nil {
		if errors.Is(err, logic.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": ToEventResponse(event)})
}

// UpdateEvent updates the editable subset of event fields.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var updateData struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make(map[string]interface{})
	if updateData.Title != nil {
		updates["title"] = *updateData.Title
	}
	if updateData.Description != nil {
		updates["description"] = *updateData.Description
	}
	if updateData.ImageURL != nil {
		updates["image_url"] = *updateData.ImageURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.eventLogic.UpdateEvent(c.Param("id"), updates); err != nil {
		if errors.Is(err, logic.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "event updated"})
}

// GetEventContributions lists an event's contributions, newest first.
func (h *EventHandler) GetEventContributions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	contributions, err := h.ledgerLogic.ListContributions(c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contributions": ToContributionResponseList(contributions)})
}

// GetEventStats returns progress statistics for one event.
func (h *EventHandler) GetEventStats(c *gin.Context) {
	stats, err := h.eventLogic.GetEventStats(c.Param("id"))
	if err != nil {
		if errors.Is(err, logic.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetEventTributes lists generated tributes for the event's gallery.
func (h *EventHandler) GetEventTributes(c *gin.Context) {
	tributes, err := h.eventLogic.GetEventTributes(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tributes": ToTributeResponseList(tributes)})
}

// GetOrganizerEvents lists an organizer's events for the dashboard.
func (h *EventHandler) GetOrganizerEvents(c *gin.Context) {
	events, err := h.eventLogic.GetEventsByOrganizer(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": ToEventResponseList(events)})
}

// GetOrganizerStats returns dashboard aggregates for an organizer.
func (h *EventHandler) GetOrganizerStats(c *gin.Context) {
	stats, err := h.eventLogic.GetOrganizerStats(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
