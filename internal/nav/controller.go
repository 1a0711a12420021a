package nav

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/saferoute-app/saferoute-server/internal/utils"
)

const (
	DefaultDebounceDelay  = 550 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second

	minQueryLength = 2
)

// Deps are the external collaborators a Controller orchestrates. Places,
// Directions, Store and Listener are required; Geocoder and Positions may be
// nil, degrading long-press labeling and live navigation respectively.
type Deps struct {
	Places     Places
	Geocoder   Geocoder
	Directions Directions
	Positions  PositionSource
	Store      Store
	Listener   Listener
}

type Config struct {
	DebounceDelay  time.Duration
	RequestTimeout time.Duration
	Language       string
}

// Controller owns the map screen's view mode, destination, route summary and
// navigation session. It is the sole writer of all four: user actions and
// async completions both funnel through its mutex, and completions superseded
// by a newer request of the same kind are dropped via per-operation sequence
// counters.
type Controller struct {
	deps Deps
	cfg  Config

	mu          sync.Mutex
	mode        Mode
	transport   TransportMode
	origin      GeoPoint
	originKnown bool
	destination *Destination
	route       *RouteSummary
	session     *Session

	searchSeq     uint64
	resolveSeq    uint64
	directionsSeq uint64
	debounce      *time.Timer
	closed        bool
}

func New(deps Deps, cfg Config) *Controller {
	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Controller{
		deps:      deps,
		cfg:       cfg,
		mode:      ModeIdle,
		transport: TransportDriving,
	}
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) Transport() TransportMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport
}

func (c *Controller) Destination() *Destination {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destination == nil {
		return nil
	}
	dest := *c.destination
	return &dest
}

func (c *Controller) Route() *RouteSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.route
}

// SetOrigin records the device's ambient position, used as the origin of
// directions requests before a navigation session exists.
func (c *Controller) SetOrigin(point GeoPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.origin = point
	c.originKnown = true
}

// SetQuery feeds the destination search box. The autocomplete request is
// issued after a trailing debounce; queries shorter than two characters never
// issue a request and clear any prior suggestions immediately.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	if utf8.RuneCountInString(text) < minQueryLength {
		// Invalidate any in-flight search so a late completion cannot
		// repopulate the list.
		c.searchSeq++
		c.deps.Listener.SuggestionsChanged(nil)
		return
	}
	c.debounce = time.AfterFunc(c.cfg.DebounceDelay, func() {
		c.runSearch(text)
	})
}

func (c *Controller) runSearch(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.searchSeq++
	seq := c.searchSeq
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
	defer cancel()
	suggestions, err := c.deps.Places.Suggest(ctx, text, c.cfg.Language)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.searchSeq {
		return
	}
	if err != nil {
		slog.Warn("place search failed", "query", text, "error", err)
		c.deps.Listener.Notice("Search is unavailable right now")
		return
	}
	c.deps.Listener.SuggestionsChanged(suggestions)
}

// SelectSuggestion resolves an autocomplete suggestion to coordinates and, on
// success, selects it as the destination. The resolve runs asynchronously so
// the caller never stalls on the network; a stale resolution (superseded by a
// newer one) is dropped.
func (c *Controller) SelectSuggestion(id string, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.mode == ModeNavigating {
		return
	}
	c.resolveSeq++
	seq := c.resolveSeq
	c.deps.Listener.SuggestionsChanged(nil)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
		defer cancel()
		point, err := c.deps.Places.Resolve(ctx, id)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || seq != c.resolveSeq || c.mode == ModeNavigating {
			return
		}
		if err != nil {
			slog.Warn("place resolution failed", "place", id, "error", err)
			c.deps.Listener.Notice("Could not locate that place")
			return
		}
		c.selectDestinationLocked(point, description)
	}()
}

// LongPress selects a raw map coordinate as the destination, labeling it via
// reverse geocoding with a generic fallback. The geocode runs asynchronously;
// a newer selection of either kind supersedes it.
func (c *Controller) LongPress(point GeoPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.mode == ModeNavigating {
		return
	}
	c.resolveSeq++
	seq := c.resolveSeq

	go func() {
		label := FallbackLabel
		if c.deps.Geocoder != nil {
			ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
			defer cancel()
			if description, err := c.deps.Geocoder.ReverseGeocode(ctx, point); err == nil && description != "" {
				label = description
			}
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || seq != c.resolveSeq || c.mode == ModeNavigating {
			return
		}
		c.selectDestinationLocked(point, label)
	}()
}

// SelectDestination sets the destination and enters preview. Valid from idle
// or preview; any prior route summary is cleared and a directions request for
// the current transport mode is issued.
func (c *Controller) SelectDestination(point GeoPoint, label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &ValidationError{Reason: "controller is closed"}
	}
	if c.mode == ModeNavigating {
		return &ValidationError{Reason: "cannot change destination while navigating"}
	}
	c.selectDestinationLocked(point, label)
	return nil
}

func (c *Controller) selectDestinationLocked(point GeoPoint, label string) {
	// A committed selection supersedes any resolve still in flight.
	c.resolveSeq++
	c.destination = &Destination{GeoPoint: point, Description: label}
	c.setRouteLocked(nil)
	c.setModeLocked(ModePreview)
	c.fetchDirectionsLocked()
}

// GoHome selects the user's saved home location as the destination.
func (c *Controller) GoHome() error {
	home, ok := c.deps.Store.HomeLocation()
	if !ok {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.deps.Listener.Notice("No home location is set")
		return &NotFoundError{What: "home location"}
	}
	return c.SelectDestination(home.GeoPoint, home.Description)
}

// ChangeTransportMode re-issues the directions request with a new mode.
// Valid only in preview; the view mode does not change.
func (c *Controller) ChangeTransportMode(mode TransportMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !mode.Valid() {
		return &ValidationError{Reason: "unknown transport mode"}
	}
	if c.mode != ModePreview {
		return &ValidationError{Reason: "transport mode can only change during preview"}
	}
	c.transport = mode
	c.fetchDirectionsLocked()
	return nil
}

// CancelPreview clears the destination and route and returns to idle. A stale
// in-flight directions response arriving afterwards is dropped.
func (c *Controller) CancelPreview() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModePreview {
		return &ValidationError{Reason: "not previewing"}
	}
	c.directionsSeq++
	c.resolveSeq++
	c.destination = nil
	c.setRouteLocked(nil)
	c.setModeLocked(ModeIdle)
	return nil
}

// StartNavigation enters navigating mode. Rejected unless the controller is
// previewing a computed route. The live position subscription is acquired
// here; an existing one is always released first so at most one is ever held.
func (c *Controller) StartNavigation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModePreview {
		return &ValidationError{Reason: "no route preview to start"}
	}
	if c.route == nil || len(c.route.Path) == 0 {
		return &ValidationError{Reason: "route has not been computed"}
	}
	if c.deps.Positions == nil {
		c.deps.Listener.Notice("Location access is unavailable")
		return &PermissionError{What: "location"}
	}

	c.releaseSessionLocked()
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
	defer cancel()
	sub, err := c.deps.Positions.Subscribe(ctx)
	if err != nil {
		slog.Warn("position subscription failed", "error", err)
		c.deps.Listener.Notice("Could not start live navigation")
		return err
	}

	session := &Session{StartedAt: time.Now(), sub: sub}
	c.session = session
	c.setModeLocked(ModeNavigating)
	go c.pump(session)
	return nil
}

// StopNavigation releases the position subscription, clears the planning
// session and returns to idle.
func (c *Controller) StopNavigation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeNavigating {
		return &ValidationError{Reason: "not navigating"}
	}
	c.releaseSessionLocked()
	c.directionsSeq++
	c.resolveSeq++
	c.destination = nil
	c.setRouteLocked(nil)
	c.setModeLocked(ModeIdle)
	return nil
}

// SaveFavorite persists the current planning session as a named favorite.
func (c *Controller) SaveFavorite(ctx context.Context, name string) error {
	c.mu.Lock()
	if name == "" {
		c.mu.Unlock()
		return &ValidationError{Reason: "a name is required"}
	}
	if c.destination == nil {
		c.mu.Unlock()
		return &ValidationError{Reason: "no destination selected"}
	}
	origin := c.origin
	destination := *c.destination
	c.mu.Unlock()

	err := c.deps.Store.SaveFavorite(ctx, name, origin, destination)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		slog.Warn("save favorite failed", "error", err)
		c.deps.Listener.Notice("Could not save the route")
		return err
	}
	return nil
}

// ScheduleTrip persists the current planning session as a scheduled trip.
func (c *Controller) ScheduleTrip(ctx context.Context, name string, departAt time.Time) error {
	c.mu.Lock()
	if name == "" {
		c.mu.Unlock()
		return &ValidationError{Reason: "a name is required"}
	}
	if c.destination == nil {
		c.mu.Unlock()
		return &ValidationError{Reason: "no destination selected"}
	}
	origin := c.origin
	destination := *c.destination
	mode := c.transport
	c.mu.Unlock()

	err := c.deps.Store.ScheduleTrip(ctx, name, departAt, origin, destination, mode)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		slog.Warn("schedule trip failed", "error", err)
		c.deps.Listener.Notice("Could not schedule the trip")
		return err
	}
	return nil
}

// Close tears the controller down, releasing the position subscription and
// any pending debounce. All later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.releaseSessionLocked()
}

func (c *Controller) setModeLocked(mode Mode) {
	if c.mode == mode {
		return
	}
	c.mode = mode
	c.deps.Listener.ModeChanged(mode)
}

func (c *Controller) setRouteLocked(route *RouteSummary) {
	c.route = route
	c.deps.Listener.RouteChanged(route)
}

// fetchDirectionsLocked issues a directions request for the current
// destination and transport mode. Only the most recently issued request may
// update the route summary, regardless of completion order.
func (c *Controller) fetchDirectionsLocked() {
	if c.destination == nil {
		return
	}
	if !c.originKnown {
		c.deps.Listener.Notice("Waiting for your current position")
		return
	}
	c.directionsSeq++
	seq := c.directionsSeq
	origin := c.origin
	destination := c.destination.GeoPoint
	mode := c.transport

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
		defer cancel()
		route, err := c.deps.Directions.Route(ctx, origin, destination, mode)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || seq != c.directionsSeq || c.mode != ModePreview {
			return
		}
		if err != nil {
			slog.Warn("directions request failed", "error", err)
			c.setRouteLocked(nil)
			c.deps.Listener.Notice("Could not calculate the route")
			return
		}
		c.setRouteLocked(&route)
	}()
}

func (c *Controller) releaseSessionLocked() {
	if c.session == nil {
		return
	}
	if err := c.session.sub.Close(); err != nil {
		slog.Warn("position subscription close failed", "error", err)
	}
	c.session = nil
}

// pump drains a session's position feed. It exits when the subscription is
// closed; fixes for a session that is no longer current are ignored.
func (c *Controller) pump(session *Session) {
	for position := range session.sub.Updates() {
		c.handlePosition(session, position)
	}
}

func (c *Controller) handlePosition(session *Session, position Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.session != session || c.mode != ModeNavigating || c.destination == nil {
		return
	}
	c.origin = position.GeoPoint
	c.originKnown = true
	session.Current = position

	meters := utils.Haversine(position.Lat, position.Lng, c.destination.Lat, c.destination.Lng)
	session.RemainingKm = meters / 1000
	session.RemainingMinutes = EstimateMinutes(session.RemainingKm, c.transport)

	bearing := utils.Bearing(position.Lat, position.Lng, c.destination.Lat, c.destination.Lng)
	if position.Heading != nil {
		bearing = *position.Heading
	}
	c.deps.Listener.ProgressChanged(Progress{
		Position:         position,
		Bearing:          bearing,
		RemainingKm:      session.RemainingKm,
		RemainingMinutes: session.RemainingMinutes,
	})
}

// EstimateMinutes converts a straight-line distance into an estimated travel
// time using the mode's assumed speed, rounded up to the next whole minute.
func EstimateMinutes(km float64, mode TransportMode) int {
	return int(math.Ceil(km / mode.AssumedSpeedKmh() * 60))
}
