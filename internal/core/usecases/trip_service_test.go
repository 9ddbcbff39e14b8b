package usecases_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
)

var (
	mumbai = domain.GeoPoint{Lat: 19.12, Lon: 72.85}
	delhi  = domain.GeoPoint{Lat: 28.64, Lon: 77.22}
)

func TestStepTrip_PassthroughWhenNotRunning(t *testing.T) {
	trip := domain.Trip{
		Source: mumbai, Destination: delhi,
		Route:            []domain.GeoPoint{mumbai, delhi},
		Speed:            1,
		Status:           domain.TripIdle,
		Progress:         0.4,
		DurationEstimate: 10,
		Position:         mumbai,
	}
	if got := usecases.StepTrip(trip, 5); !reflect.DeepEqual(got, trip) {
		t.Errorf("idle trip must pass through unchanged: %+v", got)
	}

	trip.Status = domain.TripRunning
	if got := usecases.StepTrip(trip, 0); !reflect.DeepEqual(got, trip) {
		t.Errorf("zero elapsed must pass through unchanged: %+v", got)
	}
}

func TestStepTrip_ProgressMonotonicAndClamped(t *testing.T) {
	trip := domain.Trip{
		Source: mumbai, Destination: delhi,
		Route:            []domain.GeoPoint{mumbai, delhi},
		Speed:            1,
		Status:           domain.TripRunning,
		DurationEstimate: 10,
		Position:         mumbai,
	}

	prev := 0.0
	for i := 0; i < 40; i++ {
		trip = usecases.StepTrip(trip, 0.33)
		if trip.Progress < prev {
			t.Fatalf("step %d: progress went backwards: %v < %v", i, trip.Progress, prev)
		}
		if trip.Progress > 1 {
			t.Fatalf("step %d: progress exceeded 1.0: %v", i, trip.Progress)
		}
		prev = trip.Progress
	}
	if trip.Status != domain.TripIdle {
		t.Errorf("trip should have completed, status %v", trip.Status)
	}
}

func TestStepTrip_ExactCompletion(t *testing.T) {
	trip := domain.Trip{
		Source: mumbai, Destination: delhi,
		Route:            []domain.GeoPoint{mumbai, delhi},
		Speed:            1,
		Status:           domain.TripRunning,
		DurationEstimate: 10,
		Position:         mumbai,
	}

	trip = usecases.StepTrip(trip, 10)
	if trip.Progress != 1.0 {
		t.Errorf("completion must land on exactly 1.0, got %v", trip.Progress)
	}
	if trip.Status != domain.TripIdle {
		t.Errorf("completed trip must go back to idle, got %v", trip.Status)
	}
	if trip.Position != delhi {
		t.Errorf("completed trip must sit on the destination, got %+v", trip.Position)
	}

	// Overshooting elapsed time clamps the same way.
	trip.Status = domain.TripRunning
	trip.Progress = 0.9
	trip = usecases.StepTrip(trip, 1000)
	if trip.Progress != 1.0 || trip.Position != delhi {
		t.Errorf("overshoot must clamp to the destination: %+v", trip)
	}
}

func TestStepTrip_EasingMidpoint(t *testing.T) {
	trip := domain.Trip{
		Source: mumbai, Destination: delhi,
		Route:            []domain.GeoPoint{mumbai, delhi},
		Speed:            1,
		Status:           domain.TripRunning,
		DurationEstimate: 10,
		Position:         mumbai,
	}

	// Cubic ease-in-out is symmetric: eased(0.5) = 0.5, so at half
	// progress the camera sits on the geometric midpoint.
	trip = usecases.StepTrip(trip, 5)
	wantLat := (mumbai.Lat + delhi.Lat) / 2
	wantLon := (mumbai.Lon + delhi.Lon) / 2
	if math.Abs(trip.Position.Lat-wantLat) > 1e-9 || math.Abs(trip.Position.Lon-wantLon) > 1e-9 {
		t.Errorf("expected midpoint (%v, %v), got %+v", wantLat, wantLon, trip.Position)
	}
}

func TestStepTrip_EasingSlowerAtEnds(t *testing.T) {
	straight := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 10}}
	trip := domain.Trip{
		Source: straight[0], Destination: straight[1],
		Route:            straight,
		Speed:            1,
		Status:           domain.TripRunning,
		DurationEstimate: 10,
		Position:         straight[0],
	}

	// First tenth of the timeline covers far less than a tenth of the
	// path; the middle tenth covers far more.
	early := usecases.StepTrip(trip, 1)
	if early.Position.Lon >= 1.0 {
		t.Errorf("ease-in should cover < 10%% of the path in the first 10%% of time, got %v", early.Position.Lon)
	}

	mid := trip
	mid.Progress = 0.35
	mid = usecases.StepTrip(mid, 1)
	next := usecases.StepTrip(mid, 1)
	if next.Position.Lon-mid.Position.Lon <= 1.0 {
		t.Errorf("midsection should cover > 10%% of the path per 10%% of time, got %v", next.Position.Lon-mid.Position.Lon)
	}
}

func TestTripController_StartStopRestart(t *testing.T) {
	c := usecases.NewTripController()

	if c.Running() {
		t.Fatal("fresh controller must be idle")
	}
	if st := c.Status(); st.Status != domain.TripIdle {
		t.Fatalf("fresh controller must report idle, got %v", st.Status)
	}

	trip, err := c.Start(mumbai, delhi, nil, 2)
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if trip.Status != domain.TripRunning || trip.Progress != 0 {
		t.Fatalf("started trip must be running at progress 0: %+v", trip)
	}
	if len(trip.Route) != 2 || trip.Route[0] != mumbai || trip.Route[1] != delhi {
		t.Fatalf("nil route must default to the two-point segment: %+v", trip.Route)
	}

	// Advance, then restart: the new trip cancels the old one and starts
	// over at progress 0.
	c.Tick(1)
	if c.Status().Progress == 0 {
		t.Fatal("tick should have advanced progress")
	}
	if _, err := c.Start(delhi, mumbai, nil, 1); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if st := c.Status(); st.Progress != 0 || st.Source != delhi {
		t.Fatalf("restart must replace the trip at progress 0: %+v", st)
	}

	// Stop is idempotent and leaves the camera where it is.
	c.Tick(1)
	posBefore := c.Status().Position
	c.Stop()
	if st := c.Status(); st.Status != domain.TripIdle {
		t.Fatalf("stop must return the controller to idle, got %v", st.Status)
	}
	c.Stop()
	if st := c.Status(); st.Status != domain.TripIdle {
		t.Fatalf("second stop must leave the controller idle, got %v", st.Status)
	}
	if c.Running() {
		t.Fatal("controller must be idle after stop")
	}
	if _, ok := c.Tick(10); ok {
		t.Fatal("no movement may happen after a stop")
	}
	if c.Status().Position != posBefore {
		t.Errorf("position changed after stop: %+v vs %+v", c.Status().Position, posBefore)
	}
}

func TestTripController_StartValidatesCoordinates(t *testing.T) {
	c := usecases.NewTripController()

	if _, err := c.Start(domain.GeoPoint{Lat: 95, Lon: 0}, delhi, nil, 1); err == nil {
		t.Error("expected error for out-of-range source latitude")
	}
	if _, err := c.Start(mumbai, domain.GeoPoint{Lat: 0, Lon: 181}, nil, 1); err == nil {
		t.Error("expected error for out-of-range destination longitude")
	}
	if c.Running() {
		t.Error("failed start must not leave a trip running")
	}
}

func TestTripController_WaypointRoute(t *testing.T) {
	c := usecases.NewTripController()

	// Dogleg route through an intermediate waypoint; total length 2 * 111 km.
	route := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}}
	trip, err := c.Start(route[0], route[2], route, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// length 222 km / 50 km/s = 4.44 s estimate.
	want := 222.0 / 50.0
	if math.Abs(trip.DurationEstimate-want) > 1e-9 {
		t.Errorf("expected duration %v, got %v", want, trip.DurationEstimate)
	}

	// Half progress (eased 0.5) is 111 km along the dogleg: the corner.
	pos, ok := c.Tick(trip.DurationEstimate / 2)
	if !ok {
		t.Fatal("expected trip-driven position")
	}
	if math.Abs(pos.Lat-0) > 1e-9 || math.Abs(pos.Lon-1) > 1e-9 {
		t.Errorf("expected the corner waypoint (0, 1), got %+v", pos)
	}
}
