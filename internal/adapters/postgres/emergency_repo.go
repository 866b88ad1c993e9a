package postgres

import (
	"context"

	"github.com/sfhaven/haven/internal/core/domain"
)

// EmergencyRepo implements ports.EmergencyResourceRepository.
type EmergencyRepo struct {
	db *DB
}

// NewEmergencyRepo creates a new EmergencyRepo.
func NewEmergencyRepo(db *DB) *EmergencyRepo {
	return &EmergencyRepo{db: db}
}

// Upsert inserts or updates an emergency resource.
func (r *EmergencyRepo) Upsert(ctx context.Context, res *domain.EmergencyResource) error {
	if res.ID == "" {
		return r.db.Pool.QueryRow(ctx, `
			INSERT INTO emergency_resources
				(name, type, phone, address, location, available_24_7, description)
			VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography, $7, $8)
			RETURNING id
		`, res.Name, res.Type, res.Phone, res.Address,
			res.Location.Lng, res.Location.Lat,
			res.Available24x7, res.Description).Scan(&res.ID)
	}

	// Explicit ID (seed datasets): insert-or-replace so a fresh database and
	// a re-seed behave the same.
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO emergency_resources
			(id, name, type, phone, address, location, available_24_7, description)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, type = EXCLUDED.type, phone = EXCLUDED.phone,
		    address = EXCLUDED.address, location = EXCLUDED.location,
		    available_24_7 = EXCLUDED.available_24_7, description = EXCLUDED.description
	`, res.ID, res.Name, res.Type, res.Phone, res.Address,
		res.Location.Lng, res.Location.Lat,
		res.Available24x7, res.Description)
	return err
}

// FindNearest returns emergency resources of the given type (empty string
// means all). The table is city-scoped and small, so this over-returns and
// lets the caller rank by distance.
func (r *EmergencyRepo) FindNearest(ctx context.Context, lat, lng float64, resourceType string, limit int) ([]domain.EmergencyResource, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, type, phone, COALESCE(address, ''),
		       ST_Y(location::geometry), ST_X(location::geometry),
		       available_24_7, COALESCE(description, '')
		FROM emergency_resources
		WHERE ($1 = '' OR type = $1)
		ORDER BY name
		LIMIT $2
	`, resourceType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []domain.EmergencyResource
	for rows.Next() {
		var res domain.EmergencyResource
		if err := rows.Scan(
			&res.ID, &res.Name, &res.Type, &res.Phone, &res.Address,
			&res.Location.Lat, &res.Location.Lng,
			&res.Available24x7, &res.Description,
		); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}
