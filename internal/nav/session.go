package nav

import "time"

// Session tracks a live navigation run: the position subscription driving it
// and the latest progress derived from it. Fields other than sub are guarded
// by the owning Controller's mutex.
type Session struct {
	StartedAt        time.Time
	Current          Position
	RemainingKm      float64
	RemainingMinutes int

	sub Subscription
}
