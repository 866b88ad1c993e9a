package postgres

import (
	"context"
	"time"

	"github.com/sfhaven/haven/internal/core/domain"
)

// AlertRepo implements ports.AlertRepository with pgx over PostGIS.
type AlertRepo struct {
	db *DB
}

// NewAlertRepo creates a new AlertRepo.
func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// Insert stores a new alert and fills in its generated ID. Alerts are never
// updated afterwards; they age out via ExpiresAt.
func (r *AlertRepo) Insert(ctx context.Context, a *domain.ParkingAlert) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO parking_alerts (location, alert_type, description, reported_by, created_at, expires_at)
		VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3, $4, $5, $6, $7)
		RETURNING id
	`, a.Location.Lng, a.Location.Lat, a.AlertType, a.Description,
		nullIfEmpty(a.ReportedBy), a.CreatedAt, a.ExpiresAt).Scan(&a.ID)
}

// FindNear returns alerts near a point that had not expired at the given
// instant. The caller re-filters expiry and ranks by distance itself.
func (r *AlertRepo) FindNear(ctx context.Context, lat, lng, radiusMeters float64, at time.Time, limit int) ([]domain.ParkingAlert, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, ST_Y(location::geometry), ST_X(location::geometry),
		       alert_type, COALESCE(description, ''), COALESCE(reported_by::text, ''),
		       created_at, expires_at
		FROM parking_alerts
		WHERE expires_at > $4
		  AND ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY created_at DESC
		LIMIT $5
	`, lng, lat, radiusMeters, at, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.ParkingAlert
	for rows.Next() {
		var a domain.ParkingAlert
		if err := rows.Scan(
			&a.ID, &a.Location.Lat, &a.Location.Lng,
			&a.AlertType, &a.Description, &a.ReportedBy,
			&a.CreatedAt, &a.ExpiresAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// DeleteExpired removes alert rows whose expiry passed before the cutoff.
// Housekeeping only; reads never see expired alerts regardless.
func (r *AlertRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM parking_alerts WHERE expires_at < $1
	`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
