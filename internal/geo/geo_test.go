package geo

import "testing"

func TestHaversineZero(t *testing.T) {
	d := Haversine(0, 0, 0, 0)
	if d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestEstimateMinutesFloor(t *testing.T) {
	// Same point: ETA floors at one minute rather than reporting zero.
	if got := EstimateMinutes(27.70, 85.30, 27.70, 85.30, 25); got != 1 {
		t.Fatalf("eta = %d, want 1", got)
	}
}

func TestEstimateMinutesKathmanduLalitpur(t *testing.T) {
	lat1, lng1, _ := StopCoords("Kathmandu")
	lat2, lng2, _ := StopCoords("lalitpur")
	got := EstimateMinutes(lat1, lng1, lat2, lng2, 25)
	// ~5.9 km straight-line at 25 km/h is about 14 minutes.
	if got < 10 || got > 20 {
		t.Fatalf("eta = %d, want ~14", got)
	}
}

func TestStopCoordsUnknown(t *testing.T) {
	if _, _, ok := StopCoords("narnia"); ok {
		t.Fatal("unknown stop resolved")
	}
}
