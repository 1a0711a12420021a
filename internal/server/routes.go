package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saferoute-app/saferoute-server/internal/config"
	controllersV1 "github.com/saferoute-app/saferoute-server/internal/server/controllers/v1"
	websocketControllers "github.com/saferoute-app/saferoute-server/internal/server/websocket"
	"github.com/saferoute-app/saferoute-server/internal/websocket"
)

func applyRoutes(r *gin.Engine, config *config.Config, navSocket *websocketControllers.NavigationSocket) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	apiV1 := r.Group("/v1")
	v1(apiV1, config)

	// Navigation websocket
	wsV1 := r.Group("/ws/v1")
	wsV1.GET("/navigation", requireAuth(config), websocket.CreateHandler(navSocket, config))

	r.NoRoute(func(c *gin.Context) {
		slog.Warn("Not Found", "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})
}

func v1(group *gin.RouterGroup, config *config.Config) {
	group.POST("/auth/register", controllersV1.POSTRegister)
	group.POST("/auth/login", controllersV1.POSTLogin)

	group.GET("/me", requireAuth(config), controllersV1.GETMe)
	group.PATCH("/me", requireAuth(config), controllersV1.PATCHMe)
	group.PUT("/me/home", requireAuth(config), controllersV1.PUTMeHome)
	group.DELETE("/me/home", requireAuth(config), controllersV1.DELETEMeHome)
	group.POST("/me/avatar", requireAuth(config), controllersV1.POSTMeAvatar)
	group.GET("/me/avatar", requireAuth(config), controllersV1.GETMeAvatar)

	group.GET("/places/autocomplete", requireAuth(config), controllersV1.GETPlacesAutocomplete)
	group.GET("/places/:id", requireAuth(config), controllersV1.GETPlace)
	group.GET("/geocode/reverse", requireAuth(config), controllersV1.GETReverseGeocode)
	group.GET("/directions", requireAuth(config), controllersV1.GETDirections)

	group.GET("/routes/favorites", requireAuth(config), controllersV1.GETFavoriteRoutes)
	group.POST("/routes/favorites", requireAuth(config), controllersV1.POSTFavoriteRoute)
	group.DELETE("/routes/favorites", requireAuth(config), controllersV1.DELETEFavoriteRoutes)

	group.GET("/routes/scheduled", requireAuth(config), controllersV1.GETScheduledRoutes)
	group.POST("/routes/scheduled", requireAuth(config), controllersV1.POSTScheduledRoute)
	group.DELETE("/routes/scheduled", requireAuth(config), controllersV1.DELETEScheduledRoutes)
}
