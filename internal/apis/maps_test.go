package apis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saferoute-app/saferoute-server/internal/nav"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *MapsClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewMapsClient("test-key", "es", nil)
	client.baseURL = server.URL
	return client
}

func TestSuggest(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != autocompletePath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("input"); got != "obelisco" {
			t.Errorf("unexpected input %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "es" {
			t.Errorf("unexpected language %q", got)
		}
		w.Write([]byte(`{"status":"OK","predictions":[
			{"place_id":"pid-1","description":"Obelisco, Buenos Aires"},
			{"place_id":"pid-2","description":"Obelisco de San Jacinto"}]}`))
	})

	suggestions, err := client.Suggest(context.Background(), "obelisco", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].ID != "pid-1" || suggestions[0].Description != "Obelisco, Buenos Aires" {
		t.Errorf("unexpected first suggestion %+v", suggestions[0])
	}
}

func TestSuggestZeroResults(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","predictions":[]}`))
	})

	suggestions, err := client.Suggest(context.Background(), "zzzzzz", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("expected no suggestions, got %d", len(suggestions))
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("place_id"); got != "pid-1" {
			t.Errorf("unexpected place_id %q", got)
		}
		w.Write([]byte(`{"status":"OK","result":{"geometry":{"location":{"lat":-34.6037,"lng":-58.3816}}}}`))
	})

	point, err := client.Resolve(context.Background(), "pid-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if point.Lat != -34.6037 || point.Lng != -58.3816 {
		t.Errorf("unexpected point %+v", point)
	}
}

func TestResolveNotFound(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS"}`))
	})

	_, err := client.Resolve(context.Background(), "missing")
	var notFound *nav.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}

func TestReverseGeocode(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("latlng"); got == "" {
			t.Error("missing latlng parameter")
		}
		w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Av. 9 de Julio 1000, Buenos Aires"}]}`))
	})

	address, err := client.ReverseGeocode(context.Background(), nav.GeoPoint{Lat: -34.6, Lng: -58.38})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if address != "Av. 9 de Julio 1000, Buenos Aires" {
		t.Errorf("unexpected address %q", address)
	}
}

func TestRoute(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("mode"); got != "walking" {
			t.Errorf("unexpected mode %q", got)
		}
		w.Write([]byte(`{"status":"OK","routes":[{
			"overview_polyline":{"points":"_p~iF~ps|U_ulLnnqC"},
			"legs":[{"distance":{"text":"320 km"},"duration":{"text":"3 hours 5 mins"}}]}]}`))
	})

	summary, err := client.Route(context.Background(), nav.GeoPoint{}, nav.GeoPoint{Lat: 1}, nav.TransportWalking)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(summary.Path) != 2 {
		t.Errorf("expected 2 path points, got %d", len(summary.Path))
	}
	if summary.DistanceText != "320 km" || summary.DurationText != "3 hours 5 mins" {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestRouteZeroResults(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","routes":[]}`))
	})

	_, err := client.Route(context.Background(), nav.GeoPoint{}, nav.GeoPoint{Lat: 80}, nav.TransportDriving)
	var notFound *nav.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}

func TestRouteServerError(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Route(context.Background(), nav.GeoPoint{}, nav.GeoPoint{Lat: 1}, nav.TransportDriving)
	var transport *nav.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected a transport error, got %v", err)
	}
}
