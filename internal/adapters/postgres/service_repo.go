package postgres

import (
	"context"

	"github.com/sfhaven/haven/internal/core/domain"
)

// ServiceRepo implements ports.ServiceRepository with pgx over PostGIS.
type ServiceRepo struct {
	db *DB
}

// NewServiceRepo creates a new ServiceRepo.
func NewServiceRepo(db *DB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

const serviceColumns = `
	id, name, category, COALESCE(subcategory, ''), COALESCE(description, ''),
	COALESCE(address, ''),
	ST_Y(location::geometry), ST_X(location::geometry),
	COALESCE(phone, ''), COALESCE(website, ''), COALESCE(hours, '{}'),
	COALESCE(requirements, ''), capacity, current_availability,
	COALESCE(amenities, '{}'), COALESCE(languages, '{}'),
	COALESCE(accessibility_features, '{}'), is_active, last_updated`

// Upsert inserts or updates a service.
func (r *ServiceRepo) Upsert(ctx context.Context, s *domain.Service) error {
	if s.ID == "" {
		return r.db.Pool.QueryRow(ctx, `
			INSERT INTO services
				(name, category, subcategory, description, address, location,
				 phone, website, hours, requirements, capacity, current_availability,
				 amenities, languages, accessibility_features, is_active)
			VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography,
			        $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			RETURNING id
		`, s.Name, s.Category, s.Subcategory, s.Description, s.Address,
			s.Location.Lng, s.Location.Lat,
			s.Phone, s.Website, s.Hours, s.Requirements, s.Capacity, s.CurrentAvailability,
			s.Amenities, s.Languages, s.AccessibilityFeature, s.IsActive).Scan(&s.ID)
	}

	// Explicit ID (seed datasets): insert-or-replace so a fresh database and
	// a re-seed behave the same.
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO services
			(id, name, category, subcategory, description, address, location,
			 phone, website, hours, requirements, capacity, current_availability,
			 amenities, languages, accessibility_features, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography,
		        $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, category = EXCLUDED.category,
		    subcategory = EXCLUDED.subcategory, description = EXCLUDED.description,
		    address = EXCLUDED.address, location = EXCLUDED.location,
		    phone = EXCLUDED.phone, website = EXCLUDED.website,
		    hours = EXCLUDED.hours, requirements = EXCLUDED.requirements,
		    capacity = EXCLUDED.capacity, current_availability = EXCLUDED.current_availability,
		    amenities = EXCLUDED.amenities, languages = EXCLUDED.languages,
		    accessibility_features = EXCLUDED.accessibility_features,
		    is_active = EXCLUDED.is_active, last_updated = now()
	`, s.ID, s.Name, s.Category, s.Subcategory, s.Description, s.Address,
		s.Location.Lng, s.Location.Lat,
		s.Phone, s.Website, s.Hours, s.Requirements, s.Capacity, s.CurrentAvailability,
		s.Amenities, s.Languages, s.AccessibilityFeature, s.IsActive)
	return err
}

// GetByID returns an active service by ID.
func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services WHERE id = $1 AND is_active = true
	`, id)
	return scanService(row)
}

// FindNearby returns active services within the bounding radius, optionally
// filtered by category. Results come back in a stable (category, name) order;
// distance ranking happens in the caller.
func (r *ServiceRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, category string, limit int) ([]domain.Service, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE is_active = true
		  AND ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		  AND ($4 = '' OR category = $4)
		ORDER BY category, name
		LIMIT $5
	`, lng, lat, radiusMeters, category, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *s)
	}
	return services, rows.Err()
}

func scanService(row rowScanner) (*domain.Service, error) {
	var s domain.Service
	if err := row.Scan(
		&s.ID, &s.Name, &s.Category, &s.Subcategory, &s.Description,
		&s.Address,
		&s.Location.Lat, &s.Location.Lng,
		&s.Phone, &s.Website, &s.Hours,
		&s.Requirements, &s.Capacity, &s.CurrentAvailability,
		&s.Amenities, &s.Languages,
		&s.AccessibilityFeature, &s.IsActive, &s.LastUpdated,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
