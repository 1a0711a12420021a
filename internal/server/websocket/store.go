package websocket

import (
	"context"
	"fmt"
	"time"

	"github.com/saferoute-app/saferoute-server/internal/db/models"
	"github.com/saferoute-app/saferoute-server/internal/nav"
	"gorm.io/gorm"
)

// userStore exposes the authenticated user's saved data to the navigation
// controller.
type userStore struct {
	db   *gorm.DB
	user *models.User
}

func (s *userStore) CurrentUserID() string {
	return fmt.Sprintf("%d", s.user.ID)
}

func (s *userStore) HomeLocation() (nav.Destination, bool) {
	if !s.user.HasHome() {
		return nav.Destination{}, false
	}
	label := s.user.HomeAddress.StringValue()
	if label == "" {
		label = "Home"
	}
	return nav.Destination{
		GeoPoint: nav.GeoPoint{
			Lat: s.user.HomeLat.Float64Value(),
			Lng: s.user.HomeLng.Float64Value(),
		},
		Description: label,
	}, true
}

func (s *userStore) SaveFavorite(ctx context.Context, name string, origin nav.GeoPoint, destination nav.Destination) error {
	route := models.FavoriteRoute{
		UserID:           s.user.ID,
		Name:             name,
		OriginLat:        origin.Lat,
		OriginLng:        origin.Lng,
		DestinationLat:   destination.Lat,
		DestinationLng:   destination.Lng,
		DestinationLabel: destination.Description,
	}
	return s.db.WithContext(ctx).Create(&route).Error
}

func (s *userStore) ScheduleTrip(ctx context.Context, name string, departAt time.Time, origin nav.GeoPoint, destination nav.Destination, mode nav.TransportMode) error {
	route := models.ScheduledRoute{
		UserID:           s.user.ID,
		Name:             name,
		OriginLat:        origin.Lat,
		OriginLng:        origin.Lng,
		DestinationLat:   destination.Lat,
		DestinationLng:   destination.Lng,
		DestinationLabel: destination.Description,
		TransportMode:    string(mode),
		DepartAt:         departAt,
	}
	return s.db.WithContext(ctx).Create(&route).Error
}
