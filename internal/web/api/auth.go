package api

import (
	"powerhub/auth"
	"powerhub/internal/web/middleware"
	"powerhub/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(router *gin.Engine, authModule *auth.AuthModule, middlewareManager *middleware.MiddlewareManager, agentID string) {
	r := router.Group("/auth")
	{
		r.POST("/login", func(c *gin.Context) {
			var req models.LoginRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			token, err := authModule.Login(c, req.Username, req.Password)
			if err != nil {
				c.JSON(401, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"token": token, "agent_id": agentID})
		})

		r.POST("/register", func(c *gin.Context) {
			var req models.RegisterRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			token, err := authModule.Register(c, req.Username, req.Password, req.Email)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(201, gin.H{"token": token, "agent_id": agentID})
		})

		// Websockets cannot carry the Authorization header from a browser,
		// so the app trades its JWT for a short-lived session token here
		// and dials /live with it.
		r.POST("/session", middlewareManager.RequireAuth(), func(c *gin.Context) {
			session, err := authModule.CreateSession(c, c.GetString("user_id"))
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to create session"})
				return
			}
			c.JSON(200, gin.H{"session": session})
		})

		r.POST("/logout", func(c *gin.Context) {
			session := c.Query("session")
			if session != "" {
				if err := authModule.DestroySession(c, session); err != nil {
					c.JSON(500, gin.H{"error": "Failed to destroy session"})
					return
				}
			}
			c.JSON(200, gin.H{"status": "Logged out"})
		})
	}
}
