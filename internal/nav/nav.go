// Package nav implements the map screen's navigation state machine: an idle /
// preview / navigating mode, destination selection with debounced place
// search, directions fetching, and live progress estimation while navigating.
// It is UI-agnostic; hosts feed it user actions and position fixes and observe
// it through a Listener.
package nav

import "time"

// GeoPoint is a WGS84 coordinate pair. Value object, copied freely.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Destination is the point the user is currently planning a route to. It is
// replaced wholesale whenever the user picks a new destination.
type Destination struct {
	GeoPoint
	Description string `json:"description"`
}

// RouteSummary holds the decoded path and the human-readable distance and
// duration of the first leg of a directions response. It is recomputed
// wholesale on destination or transport mode change, never partially mutated.
type RouteSummary struct {
	Path         []GeoPoint `json:"path"`
	DistanceText string     `json:"distance_text"`
	DurationText string     `json:"duration_text"`
}

// Mode is the map screen's view mode. Exactly one is active at a time.
type Mode string

const (
	ModeIdle       Mode = "idle"
	ModePreview    Mode = "preview"
	ModeNavigating Mode = "navigating"
)

type TransportMode string

const (
	TransportDriving TransportMode = "driving"
	TransportTransit TransportMode = "transit"
	TransportWalking TransportMode = "walking"
)

// Assumed speeds used for local ETA recomputation while navigating. These are
// deliberately coarse: progress updates estimate remaining time from the
// straight-line distance to the destination instead of re-querying the
// directions service on every fix.
const (
	AssumedSpeedDrivingKmh = 40.0
	AssumedSpeedTransitKmh = 25.0
	AssumedSpeedWalkingKmh = 5.0
)

func (m TransportMode) Valid() bool {
	switch m {
	case TransportDriving, TransportTransit, TransportWalking:
		return true
	}
	return false
}

// AssumedSpeedKmh returns the fixed speed assumption for a transport mode.
// Unknown modes fall back to driving.
func (m TransportMode) AssumedSpeedKmh() float64 {
	switch m {
	case TransportWalking:
		return AssumedSpeedWalkingKmh
	case TransportTransit:
		return AssumedSpeedTransitKmh
	default:
		return AssumedSpeedDrivingKmh
	}
}

// Position is a single fix from a live position feed. Heading is nil when the
// fix carries none; zero is a valid due-north heading.
type Position struct {
	GeoPoint
	Heading *float64 `json:"heading,omitempty"`
	At      time.Time
}

// Progress is the locally recomputed state of an active navigation session
// after a position fix. RemainingMinutes is ceil(km / assumed speed * 60); it
// is an approximation based on straight-line distance, not a recalculated
// route.
type Progress struct {
	Position         Position `json:"position"`
	Bearing          float64  `json:"bearing"`
	RemainingKm      float64  `json:"remaining_km"`
	RemainingMinutes int      `json:"remaining_minutes"`
}

// Suggestion is one autocomplete result. ID resolves to coordinates through
// Places.Resolve.
type Suggestion struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// FallbackLabel is used for long-press destinations when reverse geocoding
// fails or is unavailable.
const FallbackLabel = "selected point"
