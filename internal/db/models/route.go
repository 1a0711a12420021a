package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"gorm.io/gorm"
)

// Route geometry is stored as a zstd-compressed encoded polyline. Routes are
// long coordinate strings with heavy digit repetition, so this keeps blobs
// small without a lossy simplification step.
var (
	geometryEncoder, _ = zstd.NewWriter(nil)
	geometryDecoder, _ = zstd.NewReader(nil)
)

type FavoriteRoute struct {
	ID               string         `json:"id" gorm:"primaryKey"`
	UserID           uint           `json:"-" gorm:"index"`
	Name             string         `json:"name"`
	OriginLat        float64        `json:"origin_lat"`
	OriginLng        float64        `json:"origin_lng"`
	DestinationLat   float64        `json:"destination_lat"`
	DestinationLng   float64        `json:"destination_lng"`
	DestinationLabel string         `json:"destination_label"`
	Geometry         []byte         `json:"-"`
	DistanceText     string         `json:"distance_text"`
	DurationText     string         `json:"duration_text"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"-"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

func (r FavoriteRoute) TableName() string {
	return "favorite_routes"
}

func (r *FavoriteRoute) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// SetGeometry stores an encoded polyline, compressed.
func (r *FavoriteRoute) SetGeometry(polyline string) {
	if polyline == "" {
		r.Geometry = nil
		return
	}
	r.Geometry = geometryEncoder.EncodeAll([]byte(polyline), nil)
}

// Polyline returns the stored geometry as an encoded polyline.
func (r FavoriteRoute) Polyline() (string, error) {
	if len(r.Geometry) == 0 {
		return "", nil
	}
	raw, err := geometryDecoder.DecodeAll(r.Geometry, nil)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func ListFavoriteRoutes(db *gorm.DB, userID uint) ([]FavoriteRoute, error) {
	var routes []FavoriteRoute
	err := db.Where("user_id = ?", userID).Order("created_at desc").Find(&routes).Error
	return routes, err
}

func FindFavoriteRoute(db *gorm.DB, userID uint, id string) (FavoriteRoute, error) {
	var route FavoriteRoute
	err := db.Where("user_id = ? AND id = ?", userID, id).First(&route).Error
	return route, err
}

// DeleteFavoriteRoutes removes the given routes, ignoring ids that do not
// belong to the user.
func DeleteFavoriteRoutes(db *gorm.DB, userID uint, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Where("user_id = ? AND id IN ?", userID, ids).Delete(&FavoriteRoute{}).Error
}

type ScheduledRoute struct {
	ID               string         `json:"id" gorm:"primaryKey"`
	UserID           uint           `json:"-" gorm:"index"`
	Name             string         `json:"name"`
	OriginLat        float64        `json:"origin_lat"`
	OriginLng        float64        `json:"origin_lng"`
	DestinationLat   float64        `json:"destination_lat"`
	DestinationLng   float64        `json:"destination_lng"`
	DestinationLabel string         `json:"destination_label"`
	TransportMode    string         `json:"transport_mode"`
	DepartAt         time.Time      `json:"depart_at" gorm:"index"`
	Notified         bool           `json:"notified" gorm:"default:false"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"-"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

func (r ScheduledRoute) TableName() string {
	return "scheduled_routes"
}

func (r *ScheduledRoute) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func ListScheduledRoutes(db *gorm.DB, userID uint) ([]ScheduledRoute, error) {
	var routes []ScheduledRoute
	err := db.Where("user_id = ?", userID).Order("depart_at asc").Find(&routes).Error
	return routes, err
}

func DeleteScheduledRoutes(db *gorm.DB, userID uint, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Where("user_id = ? AND id IN ?", userID, ids).Delete(&ScheduledRoute{}).Error
}

// FindDueScheduledRoutes returns unnotified routes whose reminder window has
// opened but whose departure has not yet passed.
func FindDueScheduledRoutes(db *gorm.DB, now time.Time, lead time.Duration) ([]ScheduledRoute, error) {
	var routes []ScheduledRoute
	err := db.Where("notified = ? AND depart_at > ? AND depart_at <= ?", false, now, now.Add(lead)).
		Order("depart_at asc").Find(&routes).Error
	return routes, err
}

// SweepMissedScheduledRoutes marks routes whose departure passed without a
// reminder, so a backlog never produces stale notifications.
func SweepMissedScheduledRoutes(db *gorm.DB, now time.Time) error {
	return db.Model(&ScheduledRoute{}).
		Where("notified = ? AND depart_at <= ?", false, now).
		Update("notified", true).Error
}

func MarkScheduledRouteNotified(db *gorm.DB, id string) error {
	return db.Model(&ScheduledRoute{}).Where("id = ?", id).Update("notified", true).Error
}
