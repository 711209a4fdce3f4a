// Package presence classifies a connecting identity and computes the topics
// it is auto-subscribed to.
package presence

import (
	"context"
	"log/slog"

	"github.com/example/transit-messaging/internal/models"
	"github.com/example/transit-messaging/internal/topic"
)

// DriverChecker is the one capability presence needs from the directory.
type DriverChecker interface {
	IsDriver(ctx context.Context, userID int64) (bool, error)
}

type Resolver struct {
	Directory DriverChecker
	Logger    *slog.Logger
}

// Classify derives the connection-lifetime role for userID. A failed lookup
// degrades to passenger; it must never take the connection down.
func (r *Resolver) Classify(ctx context.Context, userID int64) models.Role {
	isDriver, err := r.Directory.IsDriver(ctx, userID)
	if err != nil {
		r.Logger.Warn("driver lookup failed, defaulting to passenger", "user_id", userID, "error", err)
		return models.RolePassenger
	}
	if isDriver {
		return models.RoleDriver
	}
	return models.RolePassenger
}

// Subscriptions computes the topic set for a new connection.
//
// userID 0 is anonymous: no personal inbox, vehicle feed only. A passenger
// whose pair token already names them as the passenger side skips the
// personal inbox, otherwise every message in that conversation would arrive
// twice (inbox plus legacy room). The pair token itself is always honored,
// for clients that only understand paired rooms.
func (r *Resolver) Subscriptions(ctx context.Context, userID int64, pairToken string, busID int64) (models.Role, []string) {
	var topics []string
	if busID != 0 {
		topics = append(topics, topic.Vehicle(busID))
	}
	if userID == 0 {
		return "", topics
	}

	role := r.Classify(ctx, userID)
	switch role {
	case models.RoleDriver:
		topics = append(topics, topic.DriverInbox(userID))
	default:
		if uid, _, ok := topic.ParsePairToken(pairToken); !ok || uid != userID {
			topics = append(topics, topic.UserInbox(userID))
		}
	}
	if pairToken != "" {
		topics = append(topics, topic.FromPairToken(pairToken))
	}
	return role, topics
}
