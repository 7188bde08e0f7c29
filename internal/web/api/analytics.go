package api

import (
	"log"
	"strconv"

	"powerhub/internal/analytics"
	"powerhub/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterAnalyticsRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, svc *analytics.Service) {
	group := r.Group("/analytics")
	group.Use(middleware.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			data, err := svc.Overview(c, c.Query("period"))
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, data)
		})

		group.GET("/device/:id", func(c *gin.Context) {
			data, err := svc.ForDevice(c, c.Param("id"), c.Query("period"))
			if err != nil {
				log.Printf("API: failed to build device analytics: %v", err)
				c.JSON(404, gin.H{"error": "No analytics for device"})
				return
			}
			c.JSON(200, data)
		})

		group.GET("/projections", func(c *gin.Context) {
			days := 30
			if v := c.Query("days"); v != "" {
				parsed, err := strconv.Atoi(v)
				if err != nil || parsed <= 0 {
					c.JSON(400, gin.H{"error": "Invalid days"})
					return
				}
				days = parsed
			}
			proj, err := svc.Projections(c, days)
			if err != nil {
				log.Printf("API: failed to build projections: %v", err)
				c.JSON(500, gin.H{"error": "Failed to build projections"})
				return
			}
			c.JSON(200, proj)
		})

		group.GET("/eco-tips", func(c *gin.Context) {
			c.JSON(200, analytics.EcoTips())
		})

		group.GET("/export", func(c *gin.Context) {
			if format := c.Query("format"); format != "csv" {
				c.JSON(400, gin.H{"error": "Unsupported export format"})
				return
			}
			data, err := svc.Overview(c, c.Query("period"))
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.Header("Content-Disposition", "attachment; filename=analytics.csv")
			c.Data(200, "text/csv", []byte(analytics.ExportCSV(data)))
		})
	}
}
