// Package webhook receives updates pushed by Telegram
package webhook

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"bitwise74/codedrop/telegram"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Secret derives the path token from the bot token, so the bot token
// itself never shows up in URLs or access logs
func Secret(botToken string) string {
	sum := sha256.Sum256([]byte(botToken))
	return hex.EncodeToString(sum[:16])
}

func Receive(c *gin.Context, client *telegram.Client, sink telegram.Sink, secret string) {
	requestID := c.GetString("requestID")

	if subtle.ConstantTimeCompare([]byte(c.Param("token")), []byte(secret)) != 1 {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	if err := client.HandleWebhook(c.Request.Context(), c.Request, sink); err != nil {
		zap.L().Warn("Failed to parse webhook update", zap.String("request_id", requestID), zap.Error(err))
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	c.Status(http.StatusOK)
}
