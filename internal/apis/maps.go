package apis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saferoute-app/saferoute-server/internal/nav"
	"github.com/saferoute-app/saferoute-server/internal/utils"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api"

	autocompletePath = "/place/autocomplete/json"
	detailsPath      = "/place/details/json"
	geocodePath      = "/geocode/json"
	directionsPath   = "/directions/json"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"

	placeCacheTTL = 24 * time.Hour
)

// MapsClient talks to the Google Maps Platform web services. It implements
// the place search, reverse geocoding and routing interfaces the navigation
// controller depends on. A non-nil redis client enables place detail caching,
// since place coordinates effectively never change.
type MapsClient struct {
	baseURL  string
	apiKey   string
	language string
	redis    *redis.Client
}

func NewMapsClient(apiKey string, language string, redis *redis.Client) *MapsClient {
	return &MapsClient{
		baseURL:  defaultBaseURL,
		apiKey:   apiKey,
		language: language,
		redis:    redis,
	}
}

type autocompleteResponse struct {
	Status      string `json:"status"`
	Predictions []struct {
		PlaceID     string `json:"place_id"`
		Description string `json:"description"`
	} `json:"predictions"`
}

func (m *MapsClient) Suggest(ctx context.Context, text string, languageHint string) ([]nav.Suggestion, error) {
	params := url.Values{}
	params.Set("input", text)
	params.Set("key", m.apiKey)
	if languageHint == "" {
		languageHint = m.language
	}
	if languageHint != "" {
		params.Set("language", languageHint)
	}

	var response autocompleteResponse
	if err := m.getJSON(ctx, autocompletePath, params, &response); err != nil {
		return nil, &nav.TransportError{Op: "place autocomplete", Err: err}
	}
	switch response.Status {
	case statusOK:
	case statusZeroResults:
		return nil, nil
	default:
		return nil, &nav.TransportError{Op: "place autocomplete", Err: fmt.Errorf("status %s", response.Status)}
	}

	suggestions := make([]nav.Suggestion, 0, len(response.Predictions))
	for _, prediction := range response.Predictions {
		suggestions = append(suggestions, nav.Suggestion{
			ID:          prediction.PlaceID,
			Description: prediction.Description,
		})
	}
	return suggestions, nil
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

func (m *MapsClient) Resolve(ctx context.Context, id string) (nav.GeoPoint, error) {
	cacheKey := "place:details:" + id
	if m.redis != nil {
		cached, err := m.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var point nav.GeoPoint
			if err := json.Unmarshal(cached, &point); err == nil {
				return point, nil
			}
		} else if err != redis.Nil {
			slog.Warn("place cache read failed", "error", err)
		}
	}

	params := url.Values{}
	params.Set("place_id", id)
	params.Set("fields", "geometry")
	params.Set("key", m.apiKey)

	var response detailsResponse
	if err := m.getJSON(ctx, detailsPath, params, &response); err != nil {
		return nav.GeoPoint{}, &nav.TransportError{Op: "place details", Err: err}
	}
	if response.Status == statusZeroResults {
		return nav.GeoPoint{}, &nav.NotFoundError{What: "place " + id}
	}
	if response.Status != statusOK {
		return nav.GeoPoint{}, &nav.TransportError{Op: "place details", Err: fmt.Errorf("status %s", response.Status)}
	}

	point := nav.GeoPoint{
		Lat: response.Result.Geometry.Location.Lat,
		Lng: response.Result.Geometry.Location.Lng,
	}
	if m.redis != nil {
		encoded, err := json.Marshal(point)
		if err == nil {
			if err := m.redis.Set(ctx, cacheKey, encoded, placeCacheTTL).Err(); err != nil {
				slog.Warn("place cache write failed", "error", err)
			}
		}
	}
	return point, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

func (m *MapsClient) ReverseGeocode(ctx context.Context, point nav.GeoPoint) (string, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", point.Lat, point.Lng))
	params.Set("key", m.apiKey)
	if m.language != "" {
		params.Set("language", m.language)
	}

	var response geocodeResponse
	if err := m.getJSON(ctx, geocodePath, params, &response); err != nil {
		return "", &nav.TransportError{Op: "reverse geocode", Err: err}
	}
	if response.Status == statusZeroResults || len(response.Results) == 0 {
		return "", &nav.NotFoundError{What: "address"}
	}
	if response.Status != statusOK {
		return "", &nav.TransportError{Op: "reverse geocode", Err: fmt.Errorf("status %s", response.Status)}
	}
	return response.Results[0].FormattedAddress, nil
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Text string `json:"text"`
			} `json:"distance"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

func (m *MapsClient) Route(ctx context.Context, origin nav.GeoPoint, destination nav.GeoPoint, mode nav.TransportMode) (nav.RouteSummary, error) {
	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	params.Set("mode", string(mode))
	params.Set("key", m.apiKey)
	if m.language != "" {
		params.Set("language", m.language)
	}

	var response directionsResponse
	if err := m.getJSON(ctx, directionsPath, params, &response); err != nil {
		return nav.RouteSummary{}, &nav.TransportError{Op: "directions", Err: err}
	}
	if response.Status == statusZeroResults || len(response.Routes) == 0 {
		return nav.RouteSummary{}, &nav.NotFoundError{What: "route"}
	}
	if response.Status != statusOK {
		return nav.RouteSummary{}, &nav.TransportError{Op: "directions", Err: fmt.Errorf("status %s", response.Status)}
	}

	route := response.Routes[0]
	summary := nav.RouteSummary{
		Path: DecodePolyline(route.OverviewPolyline.Points),
	}
	if len(route.Legs) > 0 {
		summary.DistanceText = route.Legs[0].Distance.Text
		summary.DurationText = route.Legs[0].Duration.Text
	}
	return summary, nil
}

func (m *MapsClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := utils.HTTPRequest(ctx, http.MethodGet, m.baseURL+path+"?"+params.Encode(), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
