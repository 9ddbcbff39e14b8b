// Package session runs one viewport session as an actor: a single
// goroutine owns the viewport state, applies actions, ticks the engines,
// and fans frames out to subscribers and the event bus. All external
// access goes through channels, so no locking is needed anywhere in the
// core services.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/ports"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/metrics"
)

type actionReq struct {
	action domain.Action
	reply  chan error
}

type frameReq struct {
	reply chan usecases.Frame
}

type subscribeReq struct {
	ch chan usecases.Frame
}

// Runner drives one viewport session.
type Runner struct {
	id        string
	vp        *usecases.ViewportService
	publisher ports.EventPublisher
	logger    *slog.Logger

	actionCh    chan actionReq
	frameReqCh  chan frameReq
	subscribeCh chan subscribeReq
	unsubCh     chan chan usecases.Frame
	catalogCh   chan []domain.Scene
	resizeCh    chan [2]float64

	tickHz float64
}

// Config carries runner construction parameters.
type Config struct {
	SessionID string
	TickHz    float64
	Viewport  *usecases.ViewportService
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

// New creates a Runner. It does nothing until Run is called.
func New(cfg Config) *Runner {
	if cfg.TickHz <= 0 {
		cfg.TickHz = 30
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{
		id:          cfg.SessionID,
		vp:          cfg.Viewport,
		publisher:   cfg.Publisher,
		logger:      cfg.Logger.With("session", cfg.SessionID),
		actionCh:    make(chan actionReq, 128),
		frameReqCh:  make(chan frameReq, 32),
		subscribeCh: make(chan subscribeReq, 32),
		unsubCh:     make(chan chan usecases.Frame, 32),
		catalogCh:   make(chan []domain.Scene, 4),
		resizeCh:    make(chan [2]float64, 8),
		tickHz:      cfg.TickHz,
	}
}

// Apply submits one action and waits for the actor to process it, so the
// caller sees validation errors synchronously.
func (r *Runner) Apply(ctx context.Context, a domain.Action) error {
	req := actionReq{action: a, reply: make(chan error, 1)}
	select {
	case r.actionCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Frame returns the current frame snapshot.
func (r *Runner) Frame(ctx context.Context) (usecases.Frame, error) {
	req := frameReq{reply: make(chan usecases.Frame, 1)}
	select {
	case r.frameReqCh <- req:
	case <-ctx.Done():
		return usecases.Frame{}, ctx.Err()
	}

	select {
	case f := <-req.reply:
		return f, nil
	case <-ctx.Done():
		return usecases.Frame{}, ctx.Err()
	}
}

// Subscribe registers a frame stream. The returned cancel must be called
// when the consumer goes away; slow consumers drop frames rather than
// stall the tick loop.
func (r *Runner) Subscribe(ctx context.Context) (<-chan usecases.Frame, func()) {
	ch := make(chan usecases.Frame, 32)

	select {
	case r.subscribeCh <- subscribeReq{ch: ch}:
	case <-ctx.Done():
		close(ch)
		return ch, func() {}
	}

	unsub := func() {
		select {
		case r.unsubCh <- ch:
		default:
		}
	}
	return ch, unsub
}

// RefreshCatalog hands the actor a new scene catalog snapshot.
func (r *Runner) RefreshCatalog(scenes []domain.Scene) {
	select {
	case r.catalogCh <- scenes:
	default:
		// A refresh is already queued; the next one supersedes it anyway.
	}
}

// Resize updates the render surface dimensions.
func (r *Runner) Resize(width, height float64) {
	select {
	case r.resizeCh <- [2]float64{width, height}:
	default:
	}
}

// Run executes the session loop until ctx is cancelled. It owns all
// viewport state; nothing else may touch r.vp while Run is live.
func (r *Runner) Run(ctx context.Context) error {
	now := time.Now()
	subs := map[chan usecases.Frame]struct{}{}
	lastFrame := r.snapshot()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / r.tickHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			for ch := range subs {
				close(ch)
			}
			r.logger.Info("session stopped")
			return nil

		case req := <-r.subscribeCh:
			subs[req.ch] = struct{}{}
			req.ch <- lastFrame

		case ch := <-r.unsubCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case req := <-r.frameReqCh:
			req.reply <- lastFrame

		case req := <-r.actionCh:
			wasRunning := r.vp.Trips().Running()
			err := r.vp.Apply(ctx, req.action)
			if err != nil {
				metrics.ActionsRejected.WithLabelValues(req.action.Type).Inc()
				r.logger.Warn("action rejected", "type", req.action.Type, "error", err)
			} else {
				metrics.ActionsApplied.WithLabelValues(req.action.Type).Inc()
				switch req.action.Type {
				case "start_trip":
					metrics.TripsStarted.Inc()
				case "stop_trip":
					if wasRunning {
						metrics.TripsCancelled.Inc()
					}
				}
			}
			req.reply <- err

			// Refresh the snapshot so a Frame call right after Apply
			// observes the action's effect, not the previous tick.
			if err == nil {
				lastFrame = r.vp.Snapshot(lastFrame.Scenes)
			}

		case scenes := <-r.catalogCh:
			r.vp.Scenes().ReplaceCatalog(scenes)
			metrics.CatalogRefreshes.Inc()
			r.logger.Info("scene catalog refreshed", "scenes", len(scenes))

		case dims := <-r.resizeCh:
			r.vp.Resize(dims[0], dims[1])

		case t := <-ticker.C:
			dt := t.Sub(now).Seconds()
			if dt <= 0 {
				dt = 1.0 / r.tickHz
			}
			now = t

			wasRunning := r.vp.Trips().Running()

			start := time.Now()
			frame := r.vp.Tick(dt)
			metrics.FrameTickDuration.Observe(time.Since(start).Seconds())
			metrics.FramesTicked.WithLabelValues(r.id).Inc()

			if wasRunning && frame.Trip.Status == domain.TripIdle && frame.Trip.Progress == 1.0 {
				metrics.TripsCompleted.Inc()
				r.logger.Info("trip completed")
			}

			r.publishTick(ctx, frame)
			lastFrame = frame

			for ch := range subs {
				select {
				case ch <- frame:
				default:
					// slow subscriber, drop the frame
				}
			}
		}
	}
}

// snapshot builds the initial frame without advancing any engine.
func (r *Runner) snapshot() usecases.Frame {
	return r.vp.Snapshot(usecases.SceneEvaluation{})
}

// publishTick pushes the frame and any scene/trip events to the bus.
// Publish failures are logged, never fatal: the bus is best-effort and
// the session must keep ticking without it.
func (r *Runner) publishTick(ctx context.Context, frame usecases.Frame) {
	if r.publisher == nil {
		return
	}

	if data, err := json.Marshal(frame); err == nil {
		if err := r.publisher.PublishFrame(ctx, r.id, data); err != nil {
			r.logger.Warn("frame publish failed", "error", err)
		}
	}

	for _, id := range frame.Scenes.Activated {
		metrics.SceneActivations.Inc()
		if sc := r.findScene(id); sc != nil {
			if err := r.publisher.PublishSceneActivated(ctx, r.id, sc); err != nil {
				r.logger.Warn("scene event publish failed", "scene_id", id, "error", err)
			}
		}
	}
	for _, id := range frame.Scenes.Deactivated {
		metrics.SceneDeactivations.Inc()
		if err := r.publisher.PublishSceneDeactivated(ctx, r.id, id); err != nil {
			r.logger.Warn("scene event publish failed", "scene_id", id, "error", err)
		}
	}

	if frame.Trip.Status == domain.TripRunning {
		trip := frame.Trip
		if err := r.publisher.PublishTripPosition(ctx, r.id, &trip); err != nil {
			r.logger.Warn("trip position publish failed", "error", err)
		}
	}
}

func (r *Runner) findScene(id string) *domain.Scene {
	catalog := r.vp.Scenes().Catalog()
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}
