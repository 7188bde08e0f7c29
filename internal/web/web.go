package web

import (
	"powerhub/auth"
	"powerhub/internal/analytics"
	"powerhub/internal/db"
	"powerhub/internal/devices"
	"powerhub/internal/rules"
	"powerhub/internal/web/api"
	"powerhub/internal/web/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type WebServer struct {
	router *gin.Engine
}

func NewWebServer(database *db.DB, redisClient *redis.Client, store *rules.Store, directory *devices.Directory, jwtSecret, agentID string) *WebServer {
	router := gin.Default()

	authModule := auth.NewAuthModule(database.Pool(), redisClient, jwtSecret)
	middlewareManager := middleware.NewMiddlewareManager(redisClient, authModule)

	api.RegisterAuthRoutes(router, authModule, middlewareManager, agentID)
	api.RegisterDeviceRoutes(router, middlewareManager, directory)
	api.RegisterAutomationRoutes(router, middlewareManager, store, database)
	api.RegisterAnalyticsRoutes(router, middlewareManager, analytics.NewService(database))
	api.RegisterUserRoutes(router, middlewareManager, database.Pool(), authModule)
	api.RegisterLiveRoutes(router, authModule, redisClient)

	return &WebServer{router: router}
}

func (ws *WebServer) Start(addr string) error {
	return ws.router.Run(addr)
}
