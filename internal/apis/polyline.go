package apis

import (
	"strings"

	"github.com/saferoute-app/saferoute-server/internal/nav"
)

// DecodePolyline decodes an encoded polyline string with 1e-5 precision into
// an ordered list of coordinates.
func DecodePolyline(encoded string) []nav.GeoPoint {
	var points []nav.GeoPoint
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		var result, shift int
		for {
			if index >= len(encoded) {
				// Truncated varint; drop the partial point.
				return points
			}
			b := int(encoded[index]) - 63
			index++
			result |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		dlat := result >> 1
		if result&1 != 0 {
			dlat = ^dlat
		}
		lat += dlat

		result, shift = 0, 0
		for {
			if index >= len(encoded) {
				return points
			}
			b := int(encoded[index]) - 63
			index++
			result |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		dlng := result >> 1
		if result&1 != 0 {
			dlng = ^dlng
		}
		lng += dlng

		points = append(points, nav.GeoPoint{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}
	return points
}

// EncodePolyline is the inverse of DecodePolyline.
func EncodePolyline(points []nav.GeoPoint) string {
	var sb strings.Builder
	prevLat, prevLng := 0, 0
	for _, point := range points {
		lat := int(fround(point.Lat * 1e5))
		lng := int(fround(point.Lng * 1e5))
		encodeSigned(&sb, lat-prevLat)
		encodeSigned(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func encodeSigned(sb *strings.Builder, value int) {
	value <<= 1
	if value < 0 {
		value = ^value
	}
	for value >= 0x20 {
		sb.WriteByte(byte((0x20 | (value & 0x1f)) + 63))
		value >>= 5
	}
	sb.WriteByte(byte(value + 63))
}

func fround(f float64) float64 {
	if f < 0 {
		return f - 0.5
	}
	return f + 0.5
}
