package router

import (
	"context"

	"github.com/example/transit-messaging/internal/models"
	"github.com/example/transit-messaging/internal/observability"
	"github.com/example/transit-messaging/internal/topic"
)

// HandlePickup persists a pickup request and notifies the bus's driver.
// The seen flag flips only when the notification reaches at least one live
// connection; otherwise the request stays unseen until the driver polls for
// it. There is no retry.
func (s *Service) HandlePickup(ctx context.Context, requester models.Identity, in models.InboundFrame) {
	p := models.PickupRequest{
		UserID: requester.UserID,
		BusID:  in.BusID,
		Stop:   in.Stop,
		Note:   in.Message,
	}
	if err := s.Pickups.CreatePickup(ctx, &p); err != nil {
		// Without a pickup id the notification is useless to the driver UI.
		s.Logger.Error("pickup persist failed", "user_id", requester.UserID, "bus_id", in.BusID, "error", err)
		return
	}

	driverID, err := s.Directory.DriverOf(ctx, in.BusID)
	if err != nil {
		s.Logger.Warn("pickup has no reachable driver", "pickup_id", p.ID, "bus_id", in.BusID, "error", err)
		return
	}

	frame := models.PickupNotification{
		Type:     "pickup_notification",
		PickupID: p.ID,
		UserID:   requester.UserID,
		Username: requester.Name,
		BusID:    in.BusID,
		Stop:     in.Stop,
		Message:  in.Message,
	}
	delivered, err := s.Registry.Publish(topic.DriverInbox(driverID), frame)
	if err != nil {
		s.Logger.Warn("pickup publish failed", "pickup_id", p.ID, "driver_id", driverID, "error", err)
		return
	}
	if delivered == 0 {
		return
	}

	if err := s.Pickups.MarkPickupSeen(ctx, p.ID); err != nil {
		s.Logger.Error("mark seen failed", "pickup_id", p.ID, "error", err)
		return
	}
	observability.PickupsSeen.Inc()
}
