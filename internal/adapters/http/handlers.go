package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/core/usecases"
)

// requireLatLng parses the lat/lng query parameters, which every geo endpoint
// needs. On a missing parameter it writes the 400 response itself and reports
// ok=false; callers must return nil without touching the response (fiber's
// JSON write returns nil on success, so an error return cannot carry this
// signal). Presence is checked separately from parsing so that (0, 0) stays
// a valid coordinate.
func requireLatLng(c *fiber.Ctx) (lat, lng float64, ok bool) {
	if c.Query("lat") == "" || c.Query("lng") == "" {
		_ = errBadRequest(c, "lat and lng query parameters are required")
		return 0, 0, false
	}
	return c.QueryFloat("lat"), c.QueryFloat("lng"), true
}

// CheckParkingHandler resolves parking legality for a point, optionally at a
// given instant (RFC 3339 "at" parameter, default now).
func CheckParkingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lng, ok := requireLatLng(c)
		if !ok {
			return nil
		}

		var at *time.Time
		if raw := c.Query("at"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return errBadRequest(c, "at must be an RFC 3339 timestamp")
			}
			at = &t
		}

		verdict, err := deps.Parking.CheckLegality(c.Context(), lat, lng, at)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinate) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		// Verdicts are time-sensitive; never let intermediaries cache them.
		c.Set("Cache-Control", "no-store")
		return c.JSON(verdict)
	}
}

// ZonesNearHandler returns parking zones within a radius of a point.
func ZonesNearHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lng, ok := requireLatLng(c)
		if !ok {
			return nil
		}
		radius := c.QueryFloat("radius", 0)

		zones, err := deps.Parking.ZonesNear(c.Context(), lat, lng, radius)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinate) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"count": len(zones),
			"zones": zones,
		})
	}
}

// AlertsNearHandler returns live community alerts near a point, closest first.
func AlertsNearHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lng, ok := requireLatLng(c)
		if !ok {
			return nil
		}
		radius := c.QueryFloat("radius", 0)
		limit := c.QueryInt("limit", 0)

		alerts, err := deps.Parking.AlertsNear(c.Context(), lat, lng, radius, limit)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinate) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "no-store")
		return c.JSON(fiber.Map{
			"count":  len(alerts),
			"alerts": alerts,
		})
	}
}

// reportAlertRequest is the POST body for a community alert report.
type reportAlertRequest struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	AlertType   string `json:"alert_type"`
	Description string `json:"description"`
	ReportedBy  string `json:"reported_by"`
}

// ReportAlertHandler accepts a community parking alert and fans it out to
// live subscribers.
func ReportAlertHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reportAlertRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		alert, err := deps.Parking.ReportAlert(c.Context(), usecases.ReportAlertInput{
			Location:    domain.GeoPoint{Lat: req.Location.Lat, Lng: req.Location.Lng},
			AlertType:   domain.AlertType(req.AlertType),
			Description: req.Description,
			ReportedBy:  req.ReportedBy,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinate) || errors.Is(err, usecases.ErrInvalidAlertType) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.Status(201).JSON(alert)
	}
}

// ListServicesHandler returns services near a point ranked by distance,
// optionally filtered by category, with offset/limit pagination over the
// ranked result.
func ListServicesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lng, ok := requireLatLng(c)
		if !ok {
			return nil
		}
		radius := c.QueryFloat("radius", 0)
		category := c.Query("category")

		services, err := deps.Services.FindNearby(c.Context(), lat, lng, radius, category, 0)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinate) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 50 {
			limit = 20
		}

		total := len(services)
		if offset >= total {
			services = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			services = services[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: services, Pagination: pg})
	}
}

// GetServiceHandler returns a single service by ID.
func GetServiceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "service id is required")
		}

		svc, err := deps.Services.GetByID(c.Context(), id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "service not found")
			}
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(svc)
	}
}

// OfflineBundleHandler returns a snapshot of nearby services for clients that
// expect to lose connectivity.
func OfflineBundleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lng, ok := requireLatLng(c)
		if !ok {
			return nil
		}
		radius := c.QueryFloat("radius", 0)

		bundle, err := deps.Services.OfflineBundle(c.Context(), lat, lng, radius)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinate) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(bundle)
	}
}

// EmergencyNearestHandler returns the closest emergency resources, optionally
// filtered by type (shelter, medical, crisis).
func EmergencyNearestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lng, ok := requireLatLng(c)
		if !ok {
			return nil
		}
		resourceType := c.Query("type")
		limit := c.QueryInt("limit", 0)

		resources, err := deps.Emergency.Nearest(c.Context(), lat, lng, resourceType, limit)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinate) || errors.Is(err, usecases.ErrInvalidResourceType) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"count":     len(resources),
			"resources": resources,
		})
	}
}
