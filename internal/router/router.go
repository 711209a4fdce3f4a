// Package router turns inbound frames into persisted records and topic
// fanout. Delivery is best-effort: each target topic is attempted
// independently and failures are logged, never surfaced to the sender.
package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/transit-messaging/internal/models"
	"github.com/example/transit-messaging/internal/observability"
	"github.com/example/transit-messaging/internal/storage"
	"github.com/example/transit-messaging/internal/topic"
)

// Registry is the pub/sub fabric as the router sees it.
type Registry interface {
	Publish(topic string, frame any) (int, error)
}

// LocationStore holds the last known position per vehicle.
type LocationStore interface {
	Upsert(s models.VehicleLocationSample) error
}

// LocationProducer streams accepted samples to an external pipeline.
type LocationProducer interface {
	PublishLocation(s models.VehicleLocationSample) error
}

type Service struct {
	Registry  Registry
	Messages  storage.MessageStore
	Pickups   storage.PickupStore
	Directory storage.Directory
	Locations LocationStore    // optional
	Producer  LocationProducer // optional
	Logger    *slog.Logger
}

// HandleChat resolves, persists and fans out one chat message. An
// unresolvable recipient drops the message silently (chat is fire-and-forget
// on this transport); a failed persist degrades to delivery without an id.
func (s *Service) HandleChat(ctx context.Context, sender models.Identity, in models.InboundFrame) {
	recipientID, ok := s.resolveRecipient(ctx, sender, in)
	if !ok {
		observability.MessagesDropped.WithLabelValues("unresolved").Inc()
		s.Logger.Debug("chat dropped, no recipient", "sender_id", sender.UserID, "bus_id", in.BusID)
		return
	}

	m := models.Message{
		SenderID:    sender.UserID,
		RecipientID: recipientID,
		BusID:       in.BusID,
		Content:     in.Content,
		CreatedAt:   time.Now(),
	}
	if err := s.Messages.SaveMessage(ctx, &m); err != nil {
		s.Logger.Error("message persist failed", "sender_id", sender.UserID, "recipient_id", recipientID, "error", err)
	}

	frame := models.ChatFrame{
		Type:        "chat_message",
		MessageID:   m.ID,
		SenderID:    sender.UserID,
		SenderName:  sender.Name,
		RecipientID: recipientID,
		Content:     in.Content,
		BusID:       in.BusID,
		SentAt:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, target := range s.chatTargets(ctx, sender, recipientID) {
		if _, err := s.Registry.Publish(target, frame); err != nil {
			s.Logger.Warn("chat publish failed", "topic", target, "error", err)
		}
	}
}

// chatTargets lists every topic that must observe the message, each exactly
// once: recipient inbox, legacy pair room in canonical order, sender echo
// inbox, and the pair room keyed the other direction for older builds.
// Self-chat collapses to a single inbox through the dedupe.
func (s *Service) chatTargets(ctx context.Context, sender models.Identity, recipientID int64) []string {
	recipientRole := s.classify(ctx, recipientID)

	canonical, reversed := pairRooms(sender.UserID, sender.Role, recipientID, recipientRole)
	targets := []string{
		inbox(recipientRole, recipientID),
		canonical,
		inbox(sender.Role, sender.UserID),
		reversed,
	}

	seen := make(map[string]struct{}, len(targets))
	out := targets[:0]
	for _, t := range targets {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// pairRooms derives the legacy room names. The canonical room puts the
// passenger-side party in the user slot; when roles do not disambiguate
// (both passengers, both drivers), the recipient takes the user slot. The
// reversed room is the same pair with the slots swapped.
func pairRooms(senderID int64, senderRole models.Role, recipientID int64, recipientRole models.Role) (canonical, reversed string) {
	userSide, driverSide := recipientID, senderID
	if senderRole != models.RoleDriver && recipientRole == models.RoleDriver {
		userSide, driverSide = senderID, recipientID
	}
	return topic.Pair(userSide, driverSide), topic.Pair(driverSide, userSide)
}

func inbox(role models.Role, userID int64) string {
	if role == models.RoleDriver {
		return topic.DriverInbox(userID)
	}
	return topic.UserInbox(userID)
}

// classify mirrors the presence fail-safe: lookup failure means passenger.
func (s *Service) classify(ctx context.Context, userID int64) models.Role {
	isDriver, err := s.Directory.IsDriver(ctx, userID)
	if err != nil {
		s.Logger.Warn("recipient role lookup failed, assuming passenger", "user_id", userID, "error", err)
		return models.RolePassenger
	}
	if isDriver {
		return models.RoleDriver
	}
	return models.RolePassenger
}
