package router

import (
	"context"
	"time"

	"github.com/example/transit-messaging/internal/models"
	"github.com/example/transit-messaging/internal/observability"
	"github.com/example/transit-messaging/internal/topic"
)

// UpdateLocation records a vehicle's latest position and broadcasts it on
// the vehicle's feed. Persistence and the stream producer are both
// best-effort; a failed write never stops the broadcast. Coordinates are
// trusted as-is.
func (s *Service) UpdateLocation(ctx context.Context, busID int64, lat, lng float64) {
	sample := models.VehicleLocationSample{BusID: busID, Lat: lat, Lng: lng, At: time.Now()}

	if s.Locations != nil {
		if err := s.Locations.Upsert(sample); err != nil {
			s.Logger.Warn("location persist failed", "bus_id", busID, "error", err)
		}
	}
	if s.Producer != nil {
		if err := s.Producer.PublishLocation(sample); err != nil {
			s.Logger.Warn("location stream publish failed", "bus_id", busID, "error", err)
		}
	}

	frame := models.LocationUpdate{Type: "location_update", BusID: busID, Lat: lat, Lng: lng}
	if _, err := s.Registry.Publish(topic.Vehicle(busID), frame); err != nil {
		s.Logger.Warn("location broadcast failed", "bus_id", busID, "error", err)
		return
	}
	observability.LocationUpdates.Inc()
}
