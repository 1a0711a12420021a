package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/saferoute-app/saferoute-server/internal/apis"
	"github.com/saferoute-app/saferoute-server/internal/nav"
)

func mapsFromContext(c *gin.Context) (*apis.MapsClient, bool) {
	maps, ok := c.MustGet("maps").(*apis.MapsClient)
	if !ok {
		slog.Error("Failed to get maps client from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return nil, false
	}
	return maps, true
}

func upstreamError(c *gin.Context, op string, err error) {
	var notFound *nav.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return
	}
	slog.Error("Upstream request failed", "op", op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
}

func GETPlacesAutocomplete(c *gin.Context) {
	maps, ok := mapsFromContext(c)
	if !ok {
		return
	}
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	suggestions, err := maps.Suggest(c.Request.Context(), query, c.Query("language"))
	if err != nil {
		upstreamError(c, "autocomplete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func GETPlace(c *gin.Context) {
	maps, ok := mapsFromContext(c)
	if !ok {
		return
	}
	id, ok := c.Params.Get("id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	point, err := maps.Resolve(c.Request.Context(), id)
	if err != nil {
		upstreamError(c, "place details", err)
		return
	}
	c.JSON(http.StatusOK, point)
}

func GETReverseGeocode(c *gin.Context) {
	maps, ok := mapsFromContext(c)
	if !ok {
		return
	}
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	address, err := maps.ReverseGeocode(c.Request.Context(), nav.GeoPoint{Lat: lat, Lng: lng})
	if err != nil {
		var notFound *nav.NotFoundError
		if errors.As(err, &notFound) {
			// An unnamed point is still selectable.
			c.JSON(http.StatusOK, gin.H{"address": nav.FallbackLabel})
			return
		}
		upstreamError(c, "reverse geocode", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}
