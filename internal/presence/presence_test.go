package presence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/example/transit-messaging/internal/models"
)

type fakeChecker struct {
	drivers map[int64]bool
	err     error
}

func (f *fakeChecker) IsDriver(ctx context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.drivers[userID], nil
}

func newResolver(c DriverChecker) *Resolver {
	return &Resolver{Directory: c, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func contains(topics []string, want string) bool {
	for _, tp := range topics {
		if tp == want {
			return true
		}
	}
	return false
}

func TestDriverGetsDriverInboxOnly(t *testing.T) {
	r := newResolver(&fakeChecker{drivers: map[int64]bool{8: true}})
	role, topics := r.Subscriptions(context.Background(), 8, "", 0)
	if role != models.RoleDriver {
		t.Fatalf("role = %s", role)
	}
	if !contains(topics, "inbox:driver:8") {
		t.Fatalf("missing driver inbox: %v", topics)
	}
	if contains(topics, "inbox:user:8") {
		t.Fatalf("driver subscribed to passenger inbox: %v", topics)
	}
}

func TestPassengerGetsUserInbox(t *testing.T) {
	r := newResolver(&fakeChecker{})
	role, topics := r.Subscriptions(context.Background(), 42, "", 0)
	if role != models.RolePassenger {
		t.Fatalf("role = %s", role)
	}
	if !contains(topics, "inbox:user:42") {
		t.Fatalf("missing user inbox: %v", topics)
	}
}

func TestPairTokenGuardSkipsUserInbox(t *testing.T) {
	r := newResolver(&fakeChecker{})
	_, topics := r.Subscriptions(context.Background(), 42, "user_42_driver_8", 0)
	if contains(topics, "inbox:user:42") {
		t.Fatalf("guard failed, double delivery set: %v", topics)
	}
	if !contains(topics, "pair:user_42_driver_8") {
		t.Fatalf("missing pair room: %v", topics)
	}
}

func TestPairTokenForOtherUserKeepsInbox(t *testing.T) {
	r := newResolver(&fakeChecker{})
	_, topics := r.Subscriptions(context.Background(), 42, "user_7_driver_8", 0)
	if !contains(topics, "inbox:user:42") {
		t.Fatalf("inbox dropped for token naming someone else: %v", topics)
	}
	if !contains(topics, "pair:user_7_driver_8") {
		t.Fatalf("missing pair room: %v", topics)
	}
}

func TestDriverWithPairTokenJoinsRoomToo(t *testing.T) {
	r := newResolver(&fakeChecker{drivers: map[int64]bool{8: true}})
	_, topics := r.Subscriptions(context.Background(), 8, "user_42_driver_8", 0)
	if !contains(topics, "inbox:driver:8") || !contains(topics, "pair:user_42_driver_8") {
		t.Fatalf("driver pair subscription set wrong: %v", topics)
	}
}

func TestAnonymousVehicleFeed(t *testing.T) {
	r := newResolver(&fakeChecker{})
	role, topics := r.Subscriptions(context.Background(), 0, "", 2)
	if role != "" {
		t.Fatalf("anonymous role = %q", role)
	}
	if len(topics) != 1 || topics[0] != "vehicle:2" {
		t.Fatalf("topics = %v", topics)
	}
}

func TestLookupFailureDefaultsToPassenger(t *testing.T) {
	r := newResolver(&fakeChecker{err: errors.New("db down")})
	role, topics := r.Subscriptions(context.Background(), 8, "", 0)
	if role != models.RolePassenger {
		t.Fatalf("role = %s, want passenger on lookup failure", role)
	}
	if !contains(topics, "inbox:user:8") {
		t.Fatalf("degraded subscription set wrong: %v", topics)
	}
}
