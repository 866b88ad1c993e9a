package http

import (
	"github.com/nats-io/nats.go"
	"github.com/sfhaven/haven/internal/adapters/postgres"
	"github.com/sfhaven/haven/internal/adapters/valkey"
	"github.com/sfhaven/haven/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Parking   *usecases.ParkingService
	Services  *usecases.ServiceService
	Emergency *usecases.EmergencyService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
