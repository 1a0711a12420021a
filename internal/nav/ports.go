package nav

import (
	"context"
	"time"
)

// Places provides destination search. Suggest returns an empty slice on zero
// matches and a TransportError on network failure. Resolve turns a suggestion
// id into coordinates or fails with NotFoundError/TransportError.
type Places interface {
	Suggest(ctx context.Context, text string, languageHint string) ([]Suggestion, error)
	Resolve(ctx context.Context, id string) (GeoPoint, error)
}

// Geocoder labels a raw coordinate. Implementations may fail freely; callers
// fall back to FallbackLabel.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, point GeoPoint) (string, error)
}

// Directions computes a route between two points for a transport mode.
// A zero-route response is reported as NotFoundError.
type Directions interface {
	Route(ctx context.Context, origin GeoPoint, destination GeoPoint, mode TransportMode) (RouteSummary, error)
}

// Subscription is a live position feed held by an active navigation session.
// Close releases the feed; the Updates channel is closed afterwards.
type Subscription interface {
	Updates() <-chan Position
	Close() error
}

// PositionSource opens position subscriptions. Subscribe fails with
// PermissionError when location access is withheld.
type PositionSource interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Listener receives the controller's output. Callbacks are invoked
// synchronously from whichever goroutine completed the work; implementations
// must not call back into the controller from a callback.
type Listener interface {
	ModeChanged(mode Mode)
	SuggestionsChanged(suggestions []Suggestion)
	RouteChanged(route *RouteSummary)
	ProgressChanged(progress Progress)
	Notice(message string)
}

// Store is the narrow slice of application state the controller needs: the
// signed-in user, their home location, and explicit save/schedule actions.
// It replaces ambient access to a global session object.
type Store interface {
	CurrentUserID() string
	HomeLocation() (Destination, bool)
	SaveFavorite(ctx context.Context, name string, origin GeoPoint, destination Destination) error
	ScheduleTrip(ctx context.Context, name string, departAt time.Time, origin GeoPoint, destination Destination, mode TransportMode) error
}
