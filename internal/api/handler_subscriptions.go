package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"community-hub-backend/internal/model"
)

type subscriptionKeys struct {
	P256DH string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

type subscriptionPayload struct {
	Endpoint string           `json:"endpoint" binding:"required"`
	Keys     subscriptionKeys `json:"keys" binding:"required"`
}

type subscribeRequest struct {
	UserID       int64               `json:"userId" binding:"required"`
	Subscription subscriptionPayload `json:"subscription" binding:"required"`
}

// Subscribe handles POST /api/notifications/subscribe. The endpoint is the
// uniqueness key: re-subscribing from a known device updates the stored keys
// instead of creating a second row.
func (h *Handler) Subscribe(c *gin.Context) {
	if !h.pushReady {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push is not configured"})
		return
	}

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := h.store.UserExists(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown user"})
		return
	}

	sub := model.PushSubscription{
		UserID:   req.UserID,
		Endpoint: req.Subscription.Endpoint,
		P256DH:   req.Subscription.Keys.P256DH,
		Auth:     req.Subscription.Keys.Auth,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), &sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}
