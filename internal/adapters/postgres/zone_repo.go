package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sfhaven/haven/internal/core/domain"
)

// ZoneRepo implements ports.ZoneRepository with pgx over PostGIS.
type ZoneRepo struct {
	db *DB
}

// NewZoneRepo creates a new ZoneRepo.
func NewZoneRepo(db *DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

// Upsert inserts or updates a parking zone.
func (r *ZoneRepo) Upsert(ctx context.Context, z *domain.ParkingZone) error {
	geom, err := polygonToGeoJSON(z.Geometry)
	if err != nil {
		return err
	}
	restrictions, err := json.Marshal(z.Restrictions)
	if err != nil {
		return fmt.Errorf("encode restrictions: %w", err)
	}
	var cleaning []byte
	if z.StreetCleaning != nil {
		if cleaning, err = json.Marshal(z.StreetCleaning); err != nil {
			return fmt.Errorf("encode street cleaning: %w", err)
		}
	}

	if z.ID == 0 {
		return r.db.Pool.QueryRow(ctx, `
			INSERT INTO parking_zones
				(zone_type, geometry, restrictions, time_limit_minutes, street_cleaning,
				 effective_date, expiry_date, notes)
			VALUES ($1, ST_SetSRID(ST_GeomFromGeoJSON($2), 4326), $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, z.ZoneType, string(geom), restrictions, z.TimeLimitMinutes, cleaning,
			z.EffectiveDate, z.ExpiryDate, z.Notes).Scan(&z.ID)
	}

	_, err = r.db.Pool.Exec(ctx, `
		UPDATE parking_zones
		SET zone_type = $2,
		    geometry = ST_SetSRID(ST_GeomFromGeoJSON($3), 4326),
		    restrictions = $4,
		    time_limit_minutes = $5,
		    street_cleaning = $6,
		    effective_date = $7,
		    expiry_date = $8,
		    notes = $9
		WHERE id = $1
	`, z.ID, z.ZoneType, string(geom), restrictions, z.TimeLimitMinutes, cleaning,
		z.EffectiveDate, z.ExpiryDate, z.Notes)
	return err
}

const zoneColumns = `
	id, zone_type, ST_AsGeoJSON(geometry), restrictions, time_limit_minutes,
	street_cleaning, effective_date, expiry_date, COALESCE(notes, ''), created_at`

// GetByID returns a zone by ID.
func (r *ZoneRepo) GetByID(ctx context.Context, id int64) (*domain.ParkingZone, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+zoneColumns+`
		FROM parking_zones WHERE id = $1
	`, id)
	z, err := scanZone(row)
	if err != nil {
		return nil, err
	}
	return z, nil
}

// FindNear returns every zone whose geometry could intersect the radius.
// Over-returning is fine: callers re-check containment precisely.
func (r *ZoneRepo) FindNear(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.ParkingZone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+zoneColumns+`
		FROM parking_zones
		WHERE ST_DWithin(geometry::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY id
	`, lng, lat, radiusMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.ParkingZone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (*domain.ParkingZone, error) {
	var (
		z            domain.ParkingZone
		geomJSON     []byte
		restrictions []byte
		cleaning     []byte
	)
	if err := row.Scan(
		&z.ID, &z.ZoneType, &geomJSON, &restrictions, &z.TimeLimitMinutes,
		&cleaning, &z.EffectiveDate, &z.ExpiryDate, &z.Notes, &z.CreatedAt,
	); err != nil {
		return nil, err
	}

	geom, err := polygonFromGeoJSON(geomJSON)
	if err != nil {
		return nil, fmt.Errorf("zone %d: %w", z.ID, err)
	}
	z.Geometry = geom

	if len(restrictions) > 0 {
		if err := json.Unmarshal(restrictions, &z.Restrictions); err != nil {
			return nil, fmt.Errorf("zone %d restrictions: %w", z.ID, err)
		}
	}
	if len(cleaning) > 0 {
		var w domain.WeeklyWindow
		if err := json.Unmarshal(cleaning, &w); err != nil {
			return nil, fmt.Errorf("zone %d street cleaning: %w", z.ID, err)
		}
		z.StreetCleaning = &w
	}
	return &z, nil
}
