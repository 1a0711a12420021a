package apimodels

import "time"

type CreateFavoriteRequest struct {
	Name             string  `json:"name" binding:"required"`
	OriginLat        float64 `json:"origin_lat"`
	OriginLng        float64 `json:"origin_lng"`
	DestinationLat   float64 `json:"destination_lat" binding:"required"`
	DestinationLng   float64 `json:"destination_lng" binding:"required"`
	DestinationLabel string  `json:"destination_label"`
	Polyline         string  `json:"polyline"`
	DistanceText     string  `json:"distance_text"`
	DurationText     string  `json:"duration_text"`
}

type CreateScheduledRequest struct {
	Name             string    `json:"name" binding:"required"`
	OriginLat        float64   `json:"origin_lat"`
	OriginLng        float64   `json:"origin_lng"`
	DestinationLat   float64   `json:"destination_lat" binding:"required"`
	DestinationLng   float64   `json:"destination_lng" binding:"required"`
	DestinationLabel string    `json:"destination_label"`
	TransportMode    string    `json:"transport_mode"`
	DepartAt         time.Time `json:"depart_at" binding:"required"`
}

// DeleteRoutesRequest deletes a multi-selection in one call.
type DeleteRoutesRequest struct {
	IDs []string `json:"ids" binding:"required"`
}
