package apimodels

import (
	"time"

	"github.com/saferoute-app/saferoute-server/internal/nav"
)

// Navigation socket message types sent by the client.
const (
	NavActionQuery            = "query"
	NavActionSelectSuggestion = "select_suggestion"
	NavActionSelectPoint      = "select_point"
	NavActionGoHome           = "go_home"
	NavActionTransportMode    = "transport_mode"
	NavActionCancelPreview    = "cancel_preview"
	NavActionStartNavigation  = "start_navigation"
	NavActionStopNavigation   = "stop_navigation"
	NavActionPosition         = "position"
	NavActionSaveFavorite     = "save_favorite"
	NavActionScheduleTrip     = "schedule_trip"
)

// Navigation socket message types sent by the server.
const (
	NavEventMode        = "mode"
	NavEventSuggestions = "suggestions"
	NavEventRoute       = "route"
	NavEventProgress    = "progress"
	NavEventNotice      = "notice"
	NavEventReminder    = "reminder"
)

type NavClientMessage struct {
	Type        string    `json:"type"`
	Text        string    `json:"text,omitempty"`
	ID          string    `json:"id,omitempty"`
	Description string    `json:"description,omitempty"`
	Lat         float64   `json:"lat,omitempty"`
	Lng         float64   `json:"lng,omitempty"`
	Heading     *float64  `json:"heading,omitempty"`
	Mode        string    `json:"mode,omitempty"`
	Name        string    `json:"name,omitempty"`
	DepartAt    time.Time `json:"depart_at,omitempty"`
}

type NavServerMessage struct {
	Type        string            `json:"type"`
	Mode        string            `json:"mode,omitempty"`
	Suggestions []nav.Suggestion  `json:"suggestions,omitempty"`
	Route       *nav.RouteSummary `json:"route,omitempty"`
	Progress    *nav.Progress     `json:"progress,omitempty"`
	Text        string            `json:"text,omitempty"`
}
