package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifeevents/les/internal/cloudinary"
	"github.com/lifeevents/les/internal/logger"
)

// UploadHandler forwards cover image uploads to the image host.
type UploadHandler struct {
	uploads *cloudinary.Client
}

// NewUploadHandler creates the upload handler.
func NewUploadHandler(uploads *cloudinary.Client) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// EventImage uploads an event cover image and returns its public URL.
func (h *UploadHandler) EventImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	folder := "events"
	if eventId := c.PostForm("event_id"); eventId != "" {
		folder = "events/" + eventId
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer file.Close()

	url, err := h.uploads.UploadImage(c.Request.Context(), fileHeader.Filename, file, folder)
	if err != nil {
		logger.Error("Image upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
