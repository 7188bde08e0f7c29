package api

import (
	"log"

	"powerhub/internal/devices"
	"powerhub/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterDeviceRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, directory *devices.Directory) {
	group := r.Group("/devices")
	group.Use(middleware.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			devs, err := directory.List(c)
			if err != nil {
				log.Printf("API: failed to list devices: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch devices"})
				return
			}
			c.JSON(200, devs)
		})

		group.GET("/:id", func(c *gin.Context) {
			dev, err := directory.Get(c, c.Param("id"))
			if err != nil {
				c.JSON(404, gin.H{"error": "Device not found"})
				return
			}
			c.JSON(200, dev)
		})
	}
}
