package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	gorillaWebsocket "github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/saferoute-app/saferoute-server/internal/apis"
	"github.com/saferoute-app/saferoute-server/internal/config"
	"github.com/saferoute-app/saferoute-server/internal/db/models"
	"github.com/saferoute-app/saferoute-server/internal/events"
	"github.com/saferoute-app/saferoute-server/internal/metrics"
	"github.com/saferoute-app/saferoute-server/internal/nav"
	"github.com/saferoute-app/saferoute-server/internal/server/apimodels"
	"github.com/saferoute-app/saferoute-server/internal/websocket"
	"gorm.io/gorm"
)

// NavigationSocket hosts one navigation controller per connected client.
// Client messages drive the controller; controller callbacks stream state
// back down the same socket. It is also the delivery surface for scheduled
// trip reminders.
type NavigationSocket struct {
	websocket.Websocket
	config  *config.Config
	maps    *apis.MapsClient
	metrics *metrics.Metrics
	conns   *xsync.MapOf[*http.Request, *navConn]
}

func CreateNavigationSocket(cfg *config.Config, maps *apis.MapsClient, metrics *metrics.Metrics) *NavigationSocket {
	return &NavigationSocket{
		config:  cfg,
		maps:    maps,
		metrics: metrics,
		conns:   xsync.NewMapOf[*http.Request, *navConn](),
	}
}

type navConn struct {
	userID     uint
	controller *nav.Controller
	feed       *positionFeed
	writer     websocket.Writer

	mu        sync.Mutex
	transport nav.TransportMode
}

func (c *navConn) setTransport(mode nav.TransportMode) {
	c.mu.Lock()
	c.transport = mode
	c.mu.Unlock()
}

func (c *navConn) getTransport() nav.TransportMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport
}

func (c *navConn) send(msg apimodels.NavServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to encode navigation event", "error", err)
		return
	}
	c.writer.WriteMessage(websocket.Message{
		Type: gorillaWebsocket.TextMessage,
		Data: data,
	})
}

func (n *NavigationSocket) OnConnect(_ context.Context, r *http.Request, w websocket.Writer, user *models.User, db *gorm.DB) {
	conn := &navConn{
		userID:    user.ID,
		feed:      &positionFeed{},
		writer:    w,
		transport: nav.TransportDriving,
	}
	conn.controller = nav.New(nav.Deps{
		Places:     &countingPlaces{inner: n.maps, metrics: n.metrics},
		Geocoder:   n.maps,
		Directions: &countingDirections{inner: n.maps, metrics: n.metrics},
		Positions:  conn.feed,
		Store:      &userStore{db: db, user: user},
		Listener:   &connListener{conn: conn, metrics: n.metrics},
	}, nav.Config{Language: n.config.Google.Language})
	n.conns.Store(r, conn)
}

func (n *NavigationSocket) OnDisconnect(_ context.Context, r *http.Request, user *models.User, _ *gorm.DB) {
	conn, ok := n.conns.LoadAndDelete(r)
	if !ok {
		return
	}
	conn.controller.Close()
	conn.feed.Shutdown()
	slog.Info("Navigation socket closed", "user", user.ID)
}

func (n *NavigationSocket) OnMessage(ctx context.Context, r *http.Request, _ websocket.Writer, msg []byte, _ int, _ *models.User, _ *gorm.DB) {
	conn, ok := n.conns.Load(r)
	if !ok {
		return
	}
	var action apimodels.NavClientMessage
	if err := json.Unmarshal(msg, &action); err != nil {
		conn.send(apimodels.NavServerMessage{Type: apimodels.NavEventNotice, Text: "Unrecognized message"})
		return
	}

	var err error
	switch action.Type {
	case apimodels.NavActionQuery:
		conn.controller.SetQuery(action.Text)
	case apimodels.NavActionSelectSuggestion:
		conn.controller.SelectSuggestion(action.ID, action.Description)
	case apimodels.NavActionSelectPoint:
		conn.controller.LongPress(nav.GeoPoint{Lat: action.Lat, Lng: action.Lng})
	case apimodels.NavActionGoHome:
		err = conn.controller.GoHome()
	case apimodels.NavActionTransportMode:
		mode := nav.TransportMode(action.Mode)
		err = conn.controller.ChangeTransportMode(mode)
		if err == nil {
			conn.setTransport(mode)
		}
	case apimodels.NavActionCancelPreview:
		err = conn.controller.CancelPreview()
	case apimodels.NavActionStartNavigation:
		err = conn.controller.StartNavigation()
	case apimodels.NavActionStopNavigation:
		err = conn.controller.StopNavigation()
	case apimodels.NavActionPosition:
		conn.feed.Offer(nav.Position{
			GeoPoint: nav.GeoPoint{Lat: action.Lat, Lng: action.Lng},
			Heading:  action.Heading,
			At:       time.Now(),
		})
	case apimodels.NavActionSaveFavorite:
		err = conn.controller.SaveFavorite(ctx, action.Name)
	case apimodels.NavActionScheduleTrip:
		err = conn.controller.ScheduleTrip(ctx, action.Name, action.DepartAt)
	default:
		conn.send(apimodels.NavServerMessage{Type: apimodels.NavEventNotice, Text: "Unrecognized message"})
	}

	var validation *nav.ValidationError
	if errors.As(err, &validation) {
		conn.send(apimodels.NavServerMessage{Type: apimodels.NavEventNotice, Text: validation.Reason})
	}
}

// HandleTripReminder pushes a reminder to every live socket the user has.
func (n *NavigationSocket) HandleTripReminder(event events.TripReminderEvent) {
	n.conns.Range(func(_ *http.Request, conn *navConn) bool {
		if conn.userID == event.UserID {
			conn.send(apimodels.NavServerMessage{
				Type: apimodels.NavEventReminder,
				Text: fmt.Sprintf("%s departs at %s", event.Name, event.DepartAt.Local().Format("15:04")),
			})
			n.metrics.IncrementRemindersSent()
		}
		return true
	})
}

// connListener relays controller callbacks down the socket. Calls arrive
// serialized under the controller's lock, so plain fields are safe here.
type connListener struct {
	conn     *navConn
	metrics  *metrics.Metrics
	lastMode nav.Mode
}

func (l *connListener) ModeChanged(mode nav.Mode) {
	transport := string(l.conn.getTransport())
	if mode == nav.ModeNavigating {
		l.metrics.IncrementNavigationSessions(transport)
	} else if l.lastMode == nav.ModeNavigating {
		l.metrics.DecrementNavigationSessions(transport)
	}
	l.lastMode = mode
	l.conn.send(apimodels.NavServerMessage{Type: apimodels.NavEventMode, Mode: string(mode)})
}

func (l *connListener) SuggestionsChanged(suggestions []nav.Suggestion) {
	l.conn.send(apimodels.NavServerMessage{Type: apimodels.NavEventSuggestions, Suggestions: suggestions})
}

func (l *connListener) RouteChanged(route *nav.RouteSummary) {
	l.conn.send(apimodels.NavServerMessage{Type: apimodels.NavEventRoute, Route: route})
}

func (l *connListener) ProgressChanged(progress nav.Progress) {
	l.conn.send(apimodels.NavServerMessage{Type: apimodels.NavEventProgress, Progress: &progress})
}

func (l *connListener) Notice(text string) {
	l.conn.send(apimodels.NavServerMessage{Type: apimodels.NavEventNotice, Text: text})
}

type countingPlaces struct {
	inner   *apis.MapsClient
	metrics *metrics.Metrics
}

func (p *countingPlaces) Suggest(ctx context.Context, text string, languageHint string) ([]nav.Suggestion, error) {
	p.metrics.IncrementPlaceSearches()
	return p.inner.Suggest(ctx, text, languageHint)
}

func (p *countingPlaces) Resolve(ctx context.Context, id string) (nav.GeoPoint, error) {
	return p.inner.Resolve(ctx, id)
}

type countingDirections struct {
	inner   *apis.MapsClient
	metrics *metrics.Metrics
}

func (d *countingDirections) Route(ctx context.Context, origin nav.GeoPoint, destination nav.GeoPoint, mode nav.TransportMode) (nav.RouteSummary, error) {
	d.metrics.IncrementDirectionsRequests(string(mode))
	return d.inner.Route(ctx, origin, destination, mode)
}
