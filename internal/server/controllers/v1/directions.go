package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/saferoute-app/saferoute-server/internal/metrics"
	"github.com/saferoute-app/saferoute-server/internal/nav"
)

func GETDirections(c *gin.Context) {
	maps, ok := mapsFromContext(c)
	if !ok {
		return
	}
	m, ok := c.MustGet("metrics").(*metrics.Metrics)
	if !ok {
		slog.Error("Failed to get metrics from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	originLat, err1 := strconv.ParseFloat(c.Query("origin_lat"), 64)
	originLng, err2 := strconv.ParseFloat(c.Query("origin_lng"), 64)
	destLat, err3 := strconv.ParseFloat(c.Query("destination_lat"), 64)
	destLng, err4 := strconv.ParseFloat(c.Query("destination_lng"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination coordinates are required"})
		return
	}

	mode := nav.TransportMode(c.DefaultQuery("mode", string(nav.TransportDriving)))
	if !mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be driving, transit or walking"})
		return
	}

	m.IncrementDirectionsRequests(string(mode))
	summary, err := maps.Route(c.Request.Context(),
		nav.GeoPoint{Lat: originLat, Lng: originLng},
		nav.GeoPoint{Lat: destLat, Lng: destLng},
		mode)
	if err != nil {
		upstreamError(c, "directions", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
