package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/sfhaven/haven/internal/core/domain"
)

// geoJSONPolygon is the wire shape produced by ST_AsGeoJSON for a polygon:
// rings of [lng, lat] positions.
type geoJSONPolygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// polygonFromGeoJSON converts a PostGIS GeoJSON polygon into a domain
// Polygon. Interior rings (holes) are not modelled by the engine and are
// rejected so a zone with a hole cannot silently claim the hole.
func polygonFromGeoJSON(b []byte) (domain.Polygon, error) {
	var gj geoJSONPolygon
	if err := json.Unmarshal(b, &gj); err != nil {
		return domain.Polygon{}, fmt.Errorf("decode geojson: %w", err)
	}
	if gj.Type != "Polygon" {
		return domain.Polygon{}, fmt.Errorf("%w: unsupported geometry type %q", domain.ErrInvalidGeometry, gj.Type)
	}
	if len(gj.Coordinates) != 1 {
		return domain.Polygon{}, fmt.Errorf("%w: expected a single ring, got %d", domain.ErrInvalidGeometry, len(gj.Coordinates))
	}

	ring := make([]domain.GeoPoint, len(gj.Coordinates[0]))
	for i, pos := range gj.Coordinates[0] {
		if len(pos) < 2 {
			return domain.Polygon{}, fmt.Errorf("%w: position %d has %d ordinates", domain.ErrInvalidGeometry, i, len(pos))
		}
		ring[i] = domain.GeoPoint{Lng: pos[0], Lat: pos[1]}
	}

	poly := domain.Polygon{Ring: ring}
	if err := poly.Validate(); err != nil {
		return domain.Polygon{}, err
	}
	return poly, nil
}

// polygonToGeoJSON renders a domain Polygon for ST_GeomFromGeoJSON.
func polygonToGeoJSON(poly domain.Polygon) ([]byte, error) {
	if err := poly.Validate(); err != nil {
		return nil, err
	}
	ring := make([][]float64, len(poly.Ring))
	for i, p := range poly.Ring {
		ring[i] = []float64{p.Lng, p.Lat}
	}
	return json.Marshal(geoJSONPolygon{Type: "Polygon", Coordinates: [][][]float64{ring}})
}
