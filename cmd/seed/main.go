package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/sfhaven/haven/internal/adapters/postgres"
	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/pkg/config"
)

// Dataset is a city data bundle: parking zones, services, and emergency
// resources, all in the domain JSON shape.
type Dataset struct {
	City               string                     `json:"city"`
	Zones              []domain.ParkingZone       `json:"zones"`
	Services           []domain.Service           `json:"services"`
	EmergencyResources []domain.EmergencyResource `json:"emergency_resources"`
}

func main() {
	cfg, err := config.Load("haven-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	datasetPath := "data/sf_dataset.json"
	if len(os.Args) > 1 {
		datasetPath = os.Args[1]
	}

	data, err := os.ReadFile(datasetPath)
	if err != nil {
		log.Fatalf("read dataset: %v", err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		log.Fatalf("parse dataset: %v", err)
	}

	log.Printf("SF Haven Seeder — %s: %d zones, %d services, %d emergency resources",
		ds.City, len(ds.Zones), len(ds.Services), len(ds.EmergencyResources))

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Bad rows are skipped, not fatal: a partial seed is still usable and
	// the skipped ones are logged for fixing.
	zoneRepo := postgres.NewZoneRepo(db)
	zonesOK := 0
	for i := range ds.Zones {
		z := &ds.Zones[i]
		if err := z.Geometry.Validate(); err != nil {
			log.Printf("skip zone %d: %v", z.ID, err)
			continue
		}
		if err := zoneRepo.Upsert(ctx, z); err != nil {
			log.Printf("skip zone %d: %v", z.ID, err)
			continue
		}
		zonesOK++
	}

	serviceRepo := postgres.NewServiceRepo(db)
	servicesOK := 0
	for i := range ds.Services {
		s := &ds.Services[i]
		if err := s.Location.Validate(); err != nil {
			log.Printf("skip service %q: %v", s.Name, err)
			continue
		}
		if err := serviceRepo.Upsert(ctx, s); err != nil {
			log.Printf("skip service %q: %v", s.Name, err)
			continue
		}
		servicesOK++
	}

	emergencyRepo := postgres.NewEmergencyRepo(db)
	emergencyOK := 0
	for i := range ds.EmergencyResources {
		r := &ds.EmergencyResources[i]
		if err := r.Location.Validate(); err != nil {
			log.Printf("skip emergency resource %q: %v", r.Name, err)
			continue
		}
		if err := emergencyRepo.Upsert(ctx, r); err != nil {
			log.Printf("skip emergency resource %q: %v", r.Name, err)
			continue
		}
		emergencyOK++
	}

	log.Printf("seed complete: %d zones, %d services, %d emergency resources",
		zonesOK, servicesOK, emergencyOK)
}
