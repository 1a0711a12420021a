// Package notifications turns scheduled routes into departure reminders. A
// single worker scans for trips whose reminder window has opened and emits a
// reminder event for each, exactly once.
package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/saferoute-app/saferoute-server/internal/db/models"
	"github.com/saferoute-app/saferoute-server/internal/events"
	"gorm.io/gorm"
)

const scanInterval = 30 * time.Second

type Worker struct {
	db   *gorm.DB
	bus  *events.EventBus
	lead time.Duration
}

func NewWorker(db *gorm.DB, bus *events.EventBus, lead time.Duration) *Worker {
	return &Worker{
		db:   db,
		bus:  bus,
		lead: lead,
	}
}

// Run scans until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	// Trips whose departure already passed get no reminder at all.
	if err := models.SweepMissedScheduledRoutes(w.db, time.Now()); err != nil {
		slog.Error("Failed to sweep missed scheduled routes", "error", err)
	}

	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(time.Now())
		}
	}
}

func (w *Worker) scan(now time.Time) {
	due, err := models.FindDueScheduledRoutes(w.db, now, w.lead)
	if err != nil {
		slog.Error("Failed to find due scheduled routes", "error", err)
		return
	}
	for _, route := range due {
		// Mark first so a crash mid-send never repeats a reminder.
		if err := models.MarkScheduledRouteNotified(w.db, route.ID); err != nil {
			slog.Error("Failed to mark scheduled route notified", "route", route.ID, "error", err)
			continue
		}
		w.bus.GetChannel() <- events.TripReminderEvent{
			UserID:   route.UserID,
			RouteID:  route.ID,
			Name:     route.Name,
			DepartAt: route.DepartAt,
		}
		slog.Info("Trip reminder queued", "route", route.ID, "depart_at", route.DepartAt)
	}
}
