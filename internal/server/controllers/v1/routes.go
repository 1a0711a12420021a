package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saferoute-app/saferoute-server/internal/db/models"
	"github.com/saferoute-app/saferoute-server/internal/nav"
	"github.com/saferoute-app/saferoute-server/internal/server/apimodels"
	"gorm.io/gorm"
)

func userAndDB(c *gin.Context) (*models.User, *gorm.DB, bool) {
	user, ok := c.MustGet("user").(*models.User)
	if !ok {
		slog.Error("Failed to get user from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return nil, nil, false
	}
	db, ok := c.MustGet("db").(*gorm.DB)
	if !ok {
		slog.Error("Failed to get db from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return nil, nil, false
	}
	return user, db, true
}

type favoriteResponse struct {
	models.FavoriteRoute
	Polyline string `json:"polyline"`
}

func GETFavoriteRoutes(c *gin.Context) {
	user, db, ok := userAndDB(c)
	if !ok {
		return
	}

	routes, err := models.ListFavoriteRoutes(db, user.ID)
	if err != nil {
		slog.Error("Failed to list favorite routes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	response := make([]favoriteResponse, 0, len(routes))
	for _, route := range routes {
		polyline, err := route.Polyline()
		if err != nil {
			slog.Error("Failed to decode route geometry", "route", route.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
			return
		}
		response = append(response, favoriteResponse{FavoriteRoute: route, Polyline: polyline})
	}
	c.JSON(http.StatusOK, gin.H{"routes": response})
}

func POSTFavoriteRoute(c *gin.Context) {
	user, db, ok := userAndDB(c)
	if !ok {
		return
	}

	var req apimodels.CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	route := models.FavoriteRoute{
		UserID:           user.ID,
		Name:             req.Name,
		OriginLat:        req.OriginLat,
		OriginLng:        req.OriginLng,
		DestinationLat:   req.DestinationLat,
		DestinationLng:   req.DestinationLng,
		DestinationLabel: req.DestinationLabel,
		DistanceText:     req.DistanceText,
		DurationText:     req.DurationText,
	}
	route.SetGeometry(req.Polyline)
	if err := db.Create(&route).Error; err != nil {
		slog.Error("Failed to create favorite route", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, route)
}

func DELETEFavoriteRoutes(c *gin.Context) {
	user, db, ok := userAndDB(c)
	if !ok {
		return
	}

	var req apimodels.DeleteRoutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := models.DeleteFavoriteRoutes(db, user.ID, req.IDs); err != nil {
		slog.Error("Failed to delete favorite routes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": 1})
}

func GETScheduledRoutes(c *gin.Context) {
	user, db, ok := userAndDB(c)
	if !ok {
		return
	}

	routes, err := models.ListScheduledRoutes(db, user.ID)
	if err != nil {
		slog.Error("Failed to list scheduled routes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

func POSTScheduledRoute(c *gin.Context) {
	user, db, ok := userAndDB(c)
	if !ok {
		return
	}

	var req apimodels.CreateScheduledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.DepartAt.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Departure time must be in the future"})
		return
	}
	mode := nav.TransportMode(req.TransportMode)
	if req.TransportMode == "" {
		mode = nav.TransportDriving
	} else if !mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be driving, transit or walking"})
		return
	}

	route := models.ScheduledRoute{
		UserID:           user.ID,
		Name:             req.Name,
		OriginLat:        req.OriginLat,
		OriginLng:        req.OriginLng,
		DestinationLat:   req.DestinationLat,
		DestinationLng:   req.DestinationLng,
		DestinationLabel: req.DestinationLabel,
		TransportMode:    string(mode),
		DepartAt:         req.DepartAt,
	}
	if err := db.Create(&route).Error; err != nil {
		slog.Error("Failed to create scheduled route", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, route)
}

func DELETEScheduledRoutes(c *gin.Context) {
	user, db, ok := userAndDB(c)
	if !ok {
		return
	}

	var req apimodels.DeleteRoutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := models.DeleteScheduledRoutes(db, user.ID, req.IDs); err != nil {
		slog.Error("Failed to delete scheduled routes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": 1})
}
