package router

import (
	"context"

	"github.com/example/transit-messaging/internal/models"
)

// resolveRecipient fills a missing recipient from context. First match wins:
//
//  1. explicit recipient on the frame
//  2. the driver of the frame's bus, when the sender is not a driver
//  3. for driver senders, whoever most recently messaged this driver
//
// No match means the message is discarded; the protocol tolerates clients
// that omit the recipient only when the context makes it unambiguous.
func (s *Service) resolveRecipient(ctx context.Context, sender models.Identity, in models.InboundFrame) (int64, bool) {
	if in.RecipientID != nil && *in.RecipientID > 0 {
		return *in.RecipientID, true
	}

	if in.BusID != 0 && sender.Role != models.RoleDriver {
		if driverID, err := s.Directory.DriverOf(ctx, in.BusID); err == nil {
			return driverID, true
		}
		// missing bus or unassigned driver falls through
	}

	if sender.Role == models.RoleDriver {
		if last, err := s.Messages.LastSenderTo(ctx, sender.UserID); err == nil {
			return last, true
		}
	}

	return 0, false
}
