package http

import (
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/adapters/postgres"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/adapters/valkey"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/session"
	"github.com/nats-io/nats.go"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Stations   *usecases.StationService
	Projection *usecases.ProjectionService
	Zoom       *usecases.ZoomService
	Scenes     *postgres.SceneRepo
	Session    *session.Runner
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache

	// Boundaries is the static map boundary dataset loaded at startup.
	Boundaries []domain.BoundaryFeature
}
