package models

import "testing"

func TestFavoriteRouteGeometry(t *testing.T) {
	t.Parallel()
	route := FavoriteRoute{}
	route.SetGeometry("_p~iF~ps|U_ulLnnqC_mqNvxq`@")

	polyline, err := route.Polyline()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if polyline != "_p~iF~ps|U_ulLnnqC_mqNvxq`@" {
		t.Errorf("unexpected polyline: %s", polyline)
	}
}

func TestFavoriteRouteEmptyGeometry(t *testing.T) {
	t.Parallel()
	route := FavoriteRoute{}
	route.SetGeometry("")

	if route.Geometry != nil {
		t.Error("expected no stored geometry")
	}
	polyline, err := route.Polyline()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if polyline != "" {
		t.Errorf("unexpected polyline: %s", polyline)
	}
}
