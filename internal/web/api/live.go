package api

import (
	"log"
	"net/http"

	"powerhub/auth"
	"powerhub/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The app connects from its own origin; the JWT is the gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterLiveRoutes exposes the websocket feed of accepted device
// updates. Browsers cannot set headers on websocket dials, so the
// session token from POST /auth/session rides in the query string.
func RegisterLiveRoutes(r *gin.Engine, authModule *auth.AuthModule, redisClient *redis.Client) {
	r.GET("/live", func(c *gin.Context) {
		token := c.Query("session")
		if _, err := authModule.ValidateSession(c, token); err != nil {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WEB: websocket upgrade failed: %v", err)
			return
		}

		sub := redisClient.Subscribe(c, telemetry.LiveChannel)
		go func() {
			defer conn.Close()
			defer sub.Close()
			for msg := range sub.Channel() {
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					return
				}
			}
		}()

		// Drain the client side so pings and closes are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					sub.Close()
					return
				}
			}
		}()
	})
}
