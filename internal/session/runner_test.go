package session_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/session"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, name string) (*domain.Station, error) {
	if name == "Mumbai CST" {
		return &domain.Station{ID: "st-cstm", Name: name, Location: domain.GeoPoint{Lat: 19.12, Lon: 72.85}}, nil
	}
	return nil, domain.ErrNotFound
}

type countingPublisher struct {
	frames atomic.Int64
}

func (p *countingPublisher) PublishFrame(_ context.Context, _ string, _ []byte) error {
	p.frames.Add(1)
	return nil
}

func (p *countingPublisher) PublishSceneActivated(_ context.Context, _ string, _ *domain.Scene) error {
	return nil
}

func (p *countingPublisher) PublishSceneDeactivated(_ context.Context, _, _ string) error {
	return nil
}

func (p *countingPublisher) PublishTripPosition(_ context.Context, _ string, _ *domain.Trip) error {
	return nil
}

func newTestRunner(pub *countingPublisher) *session.Runner {
	home := domain.Viewport{CenterLat: 22.5, CenterLon: 82.5, Scale: 100, Width: 1024, Height: 768}
	vp := usecases.NewViewportService(
		home,
		usecases.NewProjectionService(100),
		usecases.NewZoomService(220),
		usecases.NewSceneService(2),
		usecases.NewTripController(),
		stubResolver{},
		220,
	)
	return session.New(session.Config{
		SessionID: "test",
		TickHz:    200,
		Viewport:  vp,
		Publisher: pub,
	})
}

func TestRunner_ApplyAndFrame(t *testing.T) {
	pub := &countingPublisher{}
	r := newTestRunner(pub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	if err := r.Apply(ctx, domain.Action{Type: "center", Lat: 19.12, Lon: 72.85}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	frame, err := r.Frame(ctx)
	if err != nil {
		t.Fatalf("frame failed: %v", err)
	}
	// The applied center shows up no later than the next tick.
	deadline := time.After(time.Second)
	for frame.Viewport.CenterLat != 19.12 {
		select {
		case <-deadline:
			t.Fatalf("center never observed in frames: %+v", frame.Viewport)
		case <-time.After(10 * time.Millisecond):
		}
		if frame, err = r.Frame(ctx); err != nil {
			t.Fatalf("frame failed: %v", err)
		}
	}

	// Rejections surface synchronously.
	if err := r.Apply(ctx, domain.Action{Type: "launch_rocket"}); err == nil {
		t.Error("unknown action must be rejected")
	}

	// Let the tick loop publish at least once before shutting down.
	deadline = time.After(time.Second)
	for pub.frames.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no frame published before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not stop on cancel")
	}
}

func TestRunner_SubscribeReceivesFrames(t *testing.T) {
	r := newTestRunner(&countingPublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	ch, unsub := r.Subscribe(ctx)
	defer unsub()

	count := 0
	timeout := time.After(time.Second)
	for count < 3 {
		select {
		case _, ok := <-ch:
			if !ok {
				t.Fatal("subscription closed early")
			}
			count++
		case <-timeout:
			t.Fatalf("received only %d frames within the deadline", count)
		}
	}
}
