package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/utils"
)

// WebSocketAuthMiddleware autentica o handshake via ?token= (o browser
// não envia header Authorization no upgrade).
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}
