package location

import (
	"testing"
	"time"

	"github.com/example/transit-messaging/internal/models"
)

func TestIndexOverwrites(t *testing.T) {
	idx := NewIndex()

	if _, ok := idx.Last(2); ok {
		t.Fatal("unexpected sample before any update")
	}

	_ = idx.Upsert(models.VehicleLocationSample{BusID: 2, Lat: 27.70, Lng: 85.30, At: time.Now()})
	_ = idx.Upsert(models.VehicleLocationSample{BusID: 2, Lat: 27.71, Lng: 85.31, At: time.Now()})

	s, ok := idx.Last(2)
	if !ok {
		t.Fatal("sample missing")
	}
	if s.Lat != 27.71 || s.Lng != 85.31 {
		t.Fatalf("second update did not overwrite: %+v", s)
	}
}

func TestIndexIsPerVehicle(t *testing.T) {
	idx := NewIndex()
	_ = idx.Upsert(models.VehicleLocationSample{BusID: 1, Lat: 1, Lng: 2})
	_ = idx.Upsert(models.VehicleLocationSample{BusID: 2, Lat: 3, Lng: 4})

	a, _ := idx.Last(1)
	b, _ := idx.Last(2)
	if a.Lat != 1 || b.Lat != 3 {
		t.Fatalf("cross-vehicle overwrite: %+v %+v", a, b)
	}
}
