package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sfhaven/haven/internal/core/ports"
	"github.com/sfhaven/haven/internal/pkg/metrics"
)

// HousekeepingActivities holds the activity implementations for the
// housekeeping workflow.
type HousekeepingActivities struct {
	Alerts    ports.AlertRepository
	Publisher ports.EventPublisher
}

// PurgeExpiredAlerts deletes alert rows whose expiry passed more than
// graceHours ago and returns how many were removed.
func (a *HousekeepingActivities) PurgeExpiredAlerts(ctx context.Context, graceHours int) (int64, error) {
	if graceHours < 0 {
		graceHours = 0
	}
	cutoff := time.Now().Add(-time.Duration(graceHours) * time.Hour)

	n, err := a.Alerts.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired alerts: %w", err)
	}

	metrics.AlertsPurged.Add(float64(n))
	return n, nil
}

// AnnouncePurge tells live map clients that stale alerts were swept so they
// can drop them from view.
func (a *HousekeepingActivities) AnnouncePurge(ctx context.Context, purged int64) error {
	if a.Publisher == nil {
		log.Printf("purge announcement skipped (no publisher), purged=%d", purged)
		return nil
	}
	msg, err := json.Marshal(map[string]any{
		"event":  "alerts_purged",
		"purged": purged,
		"at":     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return a.Publisher.PublishBroadcast(ctx, msg)
}
