package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"community-hub-backend/internal/model"
	"community-hub-backend/internal/notification"
)

// GetNotifications handles GET /api/notifications. The response is always a
// JSON array, newest first.
func (h *Handler) GetNotifications(c *gin.Context) {
	records, err := h.store.ListNotifications(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve notifications"})
		return
	}
	if records == nil {
		records = []model.Notification{}
	}
	c.JSON(http.StatusOK, records)
}

type sendNotificationRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
	Link  string `json:"link"`
}

// SendNotification handles POST /api/notifications/send. Partial delivery is
// a success; only the zero-active-endpoints precondition fails the request.
func (h *Handler) SendNotification(c *gin.Context) {
	if !h.pushReady {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push is not configured"})
		return
	}

	var req sendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sent, err := h.fanout.Broadcast(c.Request.Context(), notification.Message{
		Title: req.Title,
		Body:  req.Body,
		Link:  req.Link,
	})
	if err != nil {
		if errors.Is(err, notification.ErrNoSubscribers) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no active subscribers"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sent": sent})
}

// DeleteNotification handles DELETE /api/notifications/:id.
func (h *Handler) DeleteNotification(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID"})
		return
	}

	if err := h.store.DeleteNotification(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
