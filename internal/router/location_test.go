package router

import (
	"context"
	"errors"
	"testing"

	"github.com/example/transit-messaging/internal/models"
)

type fakeLocations struct {
	samples []models.VehicleLocationSample
	err     error
}

func (f *fakeLocations) Upsert(s models.VehicleLocationSample) error {
	if f.err != nil {
		return f.err
	}
	f.samples = append(f.samples, s)
	return nil
}

func TestLocationUpdateBroadcastsAndPersists(t *testing.T) {
	reg := newFakeRegistry()
	store := seededStore()
	s := newService(reg, store)
	locs := &fakeLocations{}
	s.Locations = locs

	s.UpdateLocation(context.Background(), 2, 27.70, 85.30)

	frames := reg.published["vehicle:2"]
	if len(frames) != 1 {
		t.Fatalf("vehicle frames = %d, want 1", len(frames))
	}
	f := frames[0].(models.LocationUpdate)
	if f.BusID != 2 || f.Lat != 27.70 || f.Lng != 85.30 || f.Type != "location_update" {
		t.Fatalf("frame = %+v", f)
	}
	if len(locs.samples) != 1 {
		t.Fatalf("persisted samples = %d", len(locs.samples))
	}
}

func TestLocationPersistFailureStillBroadcasts(t *testing.T) {
	reg := newFakeRegistry()
	store := seededStore()
	s := newService(reg, store)
	s.Locations = &fakeLocations{err: errors.New("redis down")}

	s.UpdateLocation(context.Background(), 2, 27.70, 85.30)

	if len(reg.published["vehicle:2"]) != 1 {
		t.Fatal("broadcast must survive a failed persist")
	}
}
