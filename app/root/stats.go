package root

import (
	"net/http"

	"bitwise74/codedrop/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type statsResponse struct {
	Files              int64 `json:"files"`
	Users              int64 `json:"users"`
	Admins             int   `json:"admins"`
	BroadcastRunning bool  `json:"broadcast_running"`
}

func Stats(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	ctx := c.Request.Context()

	files, err := d.Registry.Count(ctx)
	if err != nil {
		zap.L().Error("Failed to count media", zap.String("request_id", requestID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "requestID": requestID})
		return
	}

	users, err := d.Users.Count(ctx)
	if err != nil {
		zap.L().Error("Failed to count users", zap.String("request_id", requestID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "requestID": requestID})
		return
	}

	admins, err := d.Admins.List(ctx)
	if err != nil {
		zap.L().Error("Failed to list admins", zap.String("request_id", requestID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "requestID": requestID})
		return
	}

	c.JSON(http.StatusOK, statsResponse{
		Files:              files,
		Users:              users,
		Admins:             len(admins),
		BroadcastRunning: d.Broadcaster.Running(),
	})
}
