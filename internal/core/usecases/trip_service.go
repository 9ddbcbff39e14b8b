package usecases

import (
	"time"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/geospatial"
)

// tripGlideKmPerSecond is the nominal camera glide speed at unit trip
// speed, used to estimate route duration when a trip starts.
const tripGlideKmPerSecond = 50.0

// easeInOutCubic is the easing applied to trip progress before route
// interpolation: t<0.5 → 4t³, else 1-(-2t+2)³/2.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// routeLengthKm sums planar segment lengths along the route polyline.
func routeLengthKm(route []domain.GeoPoint) float64 {
	var total float64
	for i := 0; i < len(route)-1; i++ {
		total += geospatial.PlanarDistanceKm(route[i].Lat, route[i].Lon, route[i+1].Lat, route[i+1].Lon)
	}
	return total
}

// pointAlongRoute maps a fraction of the total route length to a
// geographic point, interpolating linearly inside the covering segment.
func pointAlongRoute(route []domain.GeoPoint, frac float64) domain.GeoPoint {
	if len(route) == 0 {
		return domain.GeoPoint{}
	}
	if frac <= 0 || len(route) == 1 {
		return route[0]
	}
	if frac >= 1 {
		return route[len(route)-1]
	}

	total := routeLengthKm(route)
	if total == 0 {
		return route[0]
	}
	target := frac * total

	var walked float64
	for i := 0; i < len(route)-1; i++ {
		a, b := route[i], route[i+1]
		seg := geospatial.PlanarDistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
		if walked+seg >= target && seg > 0 {
			t := (target - walked) / seg
			return domain.GeoPoint{
				Lat: a.Lat + t*(b.Lat-a.Lat),
				Lon: a.Lon + t*(b.Lon-a.Lon),
			}
		}
		walked += seg
	}
	return route[len(route)-1]
}

// StepTrip is the pure trip step function: it advances a Running trip by
// elapsedSeconds and returns the new state. It holds no timers and may be
// driven by any scheduler — render loop, test harness, or headless
// simulation. Non-running trips pass through unchanged.
func StepTrip(trip domain.Trip, elapsedSeconds float64) domain.Trip {
	if trip.Status != domain.TripRunning || elapsedSeconds <= 0 {
		return trip
	}

	duration := trip.DurationEstimate
	if duration <= 0 {
		duration = 1
	}

	trip.Progress += trip.Speed * elapsedSeconds / duration
	if trip.Progress >= 1 {
		// Snap to exactly 1.0; the trip is done and the controller goes
		// back to Idle.
		trip.Progress = 1
		trip.Position = trip.Destination
		trip.Status = domain.TripIdle
		return trip
	}

	trip.Position = pointAlongRoute(trip.Route, easeInOutCubic(trip.Progress))
	return trip
}

// TripController drives camera animation between two geographic points.
// At most one live trip per viewport: starting a new trip while one is
// running cancels the old one, never queues.
type TripController struct {
	current *domain.Trip
}

// NewTripController creates an idle TripController.
func NewTripController() *TripController {
	return &TripController{}
}

// Start begins a trip from source to destination at the given speed.
// route, when non-empty, supplies intermediate waypoints (it must start at
// source and end at destination); otherwise the trip is the straight
// two-point segment. The controller only operates on coordinates — name
// resolution belongs to the caller.
func (c *TripController) Start(source, destination domain.GeoPoint, route []domain.GeoPoint, speed float64) (domain.Trip, error) {
	if err := source.Validate(); err != nil {
		return domain.Trip{}, err
	}
	if err := destination.Validate(); err != nil {
		return domain.Trip{}, err
	}
	if speed <= 0 {
		speed = 1
	}
	if len(route) < 2 {
		route = []domain.GeoPoint{source, destination}
	}

	duration := routeLengthKm(route) / tripGlideKmPerSecond
	if duration < 1 {
		duration = 1
	}

	trip := domain.Trip{
		Source:           source,
		Destination:      destination,
		Route:            route,
		Speed:            speed,
		Status:           domain.TripRunning,
		Progress:         0,
		DurationEstimate: duration,
		Position:         source,
		StartedAt:        time.Now().UTC(),
	}
	c.current = &trip
	return trip, nil
}

// Stop cancels the running trip and returns the controller to Idle.
// Idempotent: stopping with no trip running is a no-op, and no partial
// tick is applied after a stop. The trip struct keeps its last position
// and progress so callers can still report where the cancellation
// happened.
func (c *TripController) Stop() {
	if c.current != nil && c.current.Status == domain.TripRunning {
		c.current.Status = domain.TripIdle
	}
}

// Status returns a snapshot of the current trip. With no trip ever
// started it reports an Idle zero trip.
func (c *TripController) Status() domain.Trip {
	if c.current == nil {
		return domain.Trip{Status: domain.TripIdle}
	}
	return *c.current
}

// Running reports whether a trip is in flight.
func (c *TripController) Running() bool {
	return c.current != nil && c.current.Status == domain.TripRunning
}

// Tick advances the running trip by elapsedSeconds and returns the camera
// position for this frame. The second return is false when no trip is
// running and the camera is not trip-driven.
func (c *TripController) Tick(elapsedSeconds float64) (domain.GeoPoint, bool) {
	if !c.Running() {
		return domain.GeoPoint{}, false
	}
	next := StepTrip(*c.current, elapsedSeconds)
	*c.current = next
	return next.Position, true
}
