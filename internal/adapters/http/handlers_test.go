package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	handler "github.com/sfhaven/haven/internal/adapters/http"
	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/core/usecases"
)

// ---- Mock repositories (function-field style) ----

type mockZoneRepo struct {
	findNearFn func(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.ParkingZone, error)
}

func (m *mockZoneRepo) Upsert(ctx context.Context, z *domain.ParkingZone) error { return nil }
func (m *mockZoneRepo) GetByID(ctx context.Context, id int64) (*domain.ParkingZone, error) {
	return nil, nil
}
func (m *mockZoneRepo) FindNear(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.ParkingZone, error) {
	if m.findNearFn != nil {
		return m.findNearFn(ctx, lat, lng, radiusMeters)
	}
	return nil, nil
}

type mockAlertRepo struct {
	insertFn   func(ctx context.Context, a *domain.ParkingAlert) error
	findNearFn func(ctx context.Context, lat, lng, radiusMeters float64, at time.Time, limit int) ([]domain.ParkingAlert, error)
}

func (m *mockAlertRepo) Insert(ctx context.Context, a *domain.ParkingAlert) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, a)
	}
	return nil
}
func (m *mockAlertRepo) FindNear(ctx context.Context, lat, lng, radiusMeters float64, at time.Time, limit int) ([]domain.ParkingAlert, error) {
	if m.findNearFn != nil {
		return m.findNearFn(ctx, lat, lng, radiusMeters, at, limit)
	}
	return nil, nil
}
func (m *mockAlertRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type mockServiceRepo struct {
	getByIDFn    func(ctx context.Context, id string) (*domain.Service, error)
	findNearbyFn func(ctx context.Context, lat, lng, radiusMeters float64, category string, limit int) ([]domain.Service, error)
}

func (m *mockServiceRepo) Upsert(ctx context.Context, s *domain.Service) error { return nil }
func (m *mockServiceRepo) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, pgx.ErrNoRows
}
func (m *mockServiceRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, category string, limit int) ([]domain.Service, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lng, radiusMeters, category, limit)
	}
	return nil, nil
}

type mockEmergencyRepo struct {
	findNearestFn func(ctx context.Context, lat, lng float64, resourceType string, limit int) ([]domain.EmergencyResource, error)
}

func (m *mockEmergencyRepo) FindNearest(ctx context.Context, lat, lng float64, resourceType string, limit int) ([]domain.EmergencyResource, error) {
	if m.findNearestFn != nil {
		return m.findNearestFn(ctx, lat, lng, resourceType, limit)
	}
	return nil, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Parking:   usecases.NewParkingService(&mockZoneRepo{}, &mockAlertRepo{}, nil, nil, time.UTC, 0),
		Services:  usecases.NewServiceService(&mockServiceRepo{}, nil),
		Emergency: usecases.NewEmergencyService(&mockEmergencyRepo{}),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// civicCenterZone is a 1x1-degree prohibited zone covering downtown SF.
func civicCenterZone() domain.ParkingZone {
	return domain.ParkingZone{
		ID:       1,
		ZoneType: domain.ZoneProhibited,
		Notes:    "Civic Center tow-away",
		Geometry: domain.Polygon{Ring: []domain.GeoPoint{
			{Lat: 37.0, Lng: -123.0},
			{Lat: 37.0, Lng: -122.0},
			{Lat: 38.0, Lng: -122.0},
			{Lat: 38.0, Lng: -123.0},
			{Lat: 37.0, Lng: -123.0},
		}},
	}
}

// ---- Parking handler tests ----

func TestCheckParking_Restricted(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		zones := &mockZoneRepo{
			findNearFn: func(ctx context.Context, lat, lng, radius float64) ([]domain.ParkingZone, error) {
				return []domain.ParkingZone{civicCenterZone()}, nil
			},
		}
		d.Parking = usecases.NewParkingService(zones, &mockAlertRepo{}, nil, nil, time.UTC, 0)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/parking/check?lat=37.7749&lng=-122.4194", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store Cache-Control, got %q", cc)
	}

	var verdict struct {
		IsLegal *bool  `json:"is_legal"`
		Status  string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		t.Fatal(err)
	}
	if verdict.Status != "restricted" {
		t.Errorf("expected restricted, got %s", verdict.Status)
	}
	if verdict.IsLegal == nil || *verdict.IsLegal {
		t.Error("expected is_legal false")
	}
}

func TestCheckParking_UnknownOutsideZones(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/parking/check?lat=37.7749&lng=-122.4194", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var verdict struct {
		IsLegal *bool  `json:"is_legal"`
		Status  string `json:"status"`
	}
	json.NewDecoder(resp.Body).Decode(&verdict)
	if verdict.Status != "unknown" {
		t.Errorf("expected unknown, got %s", verdict.Status)
	}
	if verdict.IsLegal != nil {
		t.Error("expected is_legal null when no zone covers the point")
	}
}

func TestCheckParking_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/parking/check", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Status int    `json:"status"`
		Code   string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

func TestCheckParking_MissingParamsSkipsLookup(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		zones := &mockZoneRepo{
			findNearFn: func(ctx context.Context, lat, lng, radius float64) ([]domain.ParkingZone, error) {
				t.Error("zone lookup ran for a request with no coordinates")
				return nil, nil
			},
		}
		d.Parking = usecases.NewParkingService(zones, &mockAlertRepo{}, nil, nil, time.UTC, 0)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/parking/check", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	// The body must be the error shape, not a verdict evaluated at (0, 0).
	var body struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Code != "bad_request" {
		t.Errorf("expected bad_request body, got %q", body.Code)
	}
}

func TestCheckParking_BadCoordinates(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/parking/check?lat=200&lng=0", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCheckParking_BadTimestamp(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/parking/check?lat=37.77&lng=-122.42&at=yesterday", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestZonesNear_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		zones := &mockZoneRepo{
			findNearFn: func(ctx context.Context, lat, lng, radius float64) ([]domain.ParkingZone, error) {
				return []domain.ParkingZone{civicCenterZone()}, nil
			},
		}
		d.Parking = usecases.NewParkingService(zones, &mockAlertRepo{}, nil, nil, time.UTC, 0)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/parking/zones?lat=37.7749&lng=-122.4194&radius=500", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Count int                  `json:"count"`
		Zones []domain.ParkingZone `json:"zones"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 1 || len(result.Zones) != 1 {
		t.Fatalf("expected 1 zone, got count=%d len=%d", result.Count, len(result.Zones))
	}
	if result.Zones[0].ZoneType != domain.ZoneProhibited {
		t.Errorf("expected prohibited zone, got %s", result.Zones[0].ZoneType)
	}
}

func TestAlertsNear_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		alerts := &mockAlertRepo{
			findNearFn: func(ctx context.Context, lat, lng, radius float64, at time.Time, limit int) ([]domain.ParkingAlert, error) {
				return []domain.ParkingAlert{{
					ID:        "al-1",
					Location:  domain.GeoPoint{Lat: lat, Lng: lng},
					AlertType: domain.AlertHazard,
					CreatedAt: time.Now(),
					ExpiresAt: time.Now().Add(time.Hour),
				}}, nil
			},
		}
		d.Parking = usecases.NewParkingService(&mockZoneRepo{}, alerts, nil, nil, time.UTC, 0)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/parking/alerts?lat=37.7749&lng=-122.4194", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Count  int                   `json:"count"`
		Alerts []domain.ParkingAlert `json:"alerts"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 1 {
		t.Fatalf("expected 1 alert, got %d", result.Count)
	}
	if result.Alerts[0].Distance == nil {
		t.Error("expected distance annotated on the alert")
	}
}

func TestReportAlert_Created(t *testing.T) {
	var inserted *domain.ParkingAlert
	deps := makeDeps(func(d *handler.Dependencies) {
		alerts := &mockAlertRepo{
			insertFn: func(ctx context.Context, a *domain.ParkingAlert) error {
				inserted = a
				return nil
			},
		}
		d.Parking = usecases.NewParkingService(&mockZoneRepo{}, alerts, nil, nil, time.UTC, 0)
	})
	app := setupApp(deps)

	body := `{"location":{"lat":37.7749,"lng":-122.4194},"alert_type":"enforcement","description":"tow truck on Folsom"}`
	req := httptest.NewRequest("POST", "/v1/parking/report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if inserted == nil {
		t.Fatal("alert was not persisted")
	}
	if got := inserted.ExpiresAt.Sub(inserted.CreatedAt); got != 2*time.Hour {
		t.Errorf("enforcement alert should live 2h, got %s", got)
	}
}

func TestReportAlert_InvalidType(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"location":{"lat":37.7749,"lng":-122.4194},"alert_type":"party"}`
	req := httptest.NewRequest("POST", "/v1/parking/report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestReportAlert_MalformedBody(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/parking/report", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Service handler tests ----

func TestListServices_Pagination(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		services := &mockServiceRepo{
			findNearbyFn: func(ctx context.Context, lat, lng, radius float64, category string, limit int) ([]domain.Service, error) {
				out := make([]domain.Service, 5)
				for i := range out {
					out[i] = domain.Service{
						ID:       fmt.Sprintf("s%d", i),
						Name:     fmt.Sprintf("Service %d", i),
						Location: domain.GeoPoint{Lat: lat + float64(i)*0.001, Lng: lng},
						IsActive: true,
					}
				}
				return out, nil
			},
		}
		d.Services = usecases.NewServiceService(services, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/services?lat=37.7749&lng=-122.4194&offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if link := resp.Header.Get("Link"); link == "" {
		t.Error("expected Link pagination headers")
	}

	var result struct {
		Data       []domain.Service `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 services in page, got %d", len(result.Data))
	}
	// Ranked nearest-first before slicing, so page 2 starts at s2.
	if result.Data[0].ID != "s2" {
		t.Errorf("expected s2 first in page, got %s", result.Data[0].ID)
	}
}

func TestListServices_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/services", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetService_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		services := &mockServiceRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Service, error) {
				return &domain.Service{ID: id, Name: "MSC South Shelter"}, nil
			},
		}
		d.Services = usecases.NewServiceService(services, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/services/abc-123", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var svc domain.Service
	json.NewDecoder(resp.Body).Decode(&svc)
	if svc.Name != "MSC South Shelter" {
		t.Errorf("expected MSC South Shelter, got %s", svc.Name)
	}
}

func TestGetService_NotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		services := &mockServiceRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Service, error) {
				return nil, pgx.ErrNoRows
			},
		}
		d.Services = usecases.NewServiceService(services, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/services/nonexistent-id", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found error, got %s", apiErr.Code)
	}
}

func TestOfflineBundle_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		services := &mockServiceRepo{
			findNearbyFn: func(ctx context.Context, lat, lng, radius float64, category string, limit int) ([]domain.Service, error) {
				return []domain.Service{
					{ID: "s1", Name: "Glide Memorial", Location: domain.GeoPoint{Lat: lat, Lng: lng}, IsActive: true},
				}, nil
			},
		}
		d.Services = usecases.NewServiceService(services, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/services/offline-bundle?lat=37.7749&lng=-122.4194", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var bundle domain.OfflineBundle
	json.NewDecoder(resp.Body).Decode(&bundle)
	if len(bundle.Services) != 1 {
		t.Errorf("expected 1 service in bundle, got %d", len(bundle.Services))
	}
	if bundle.Version == "" {
		t.Error("bundle missing version")
	}
}

// ---- Emergency handler tests ----

func TestEmergencyNearest_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Emergency = usecases.NewEmergencyService(&mockEmergencyRepo{
			findNearestFn: func(ctx context.Context, lat, lng float64, resourceType string, limit int) ([]domain.EmergencyResource, error) {
				return []domain.EmergencyResource{
					{ID: "e1", Name: "SF Homeless Outreach", Type: "crisis", Phone: "415-355-7401",
						Location: domain.GeoPoint{Lat: lat, Lng: lng}},
				}, nil
			},
		})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/emergency/nearest?lat=37.7749&lng=-122.4194&type=crisis", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Count     int                        `json:"count"`
		Resources []domain.EmergencyResource `json:"resources"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 1 {
		t.Fatalf("expected 1 resource, got %d", result.Count)
	}
	if result.Resources[0].Phone == "" {
		t.Error("expected phone number on resource")
	}
}

func TestEmergencyNearest_BadType(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/emergency/nearest?lat=37.77&lng=-122.42&type=helicopter", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Health tests ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Version string `json:"version"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Version == "" {
		t.Error("health response missing version")
	}
}

func TestReady_NoDatabase(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without a database, got %d", resp.StatusCode)
	}
}
