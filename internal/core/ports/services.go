package ports

import (
	"context"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
)

// EventPublisher publishes viewport events to a message broker.
type EventPublisher interface {
	PublishFrame(ctx context.Context, sessionID string, frame []byte) error
	PublishSceneActivated(ctx context.Context, sessionID string, scene *domain.Scene) error
	PublishSceneDeactivated(ctx context.Context, sessionID, sceneID string) error
	PublishTripPosition(ctx context.Context, sessionID string, trip *domain.Trip) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
