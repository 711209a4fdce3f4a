package storage

import (
	"context"
	"errors"

	"github.com/example/transit-messaging/internal/models"
)

var (
	// ErrNotFound covers missing vehicles, drivers and users.
	ErrNotFound = errors.New("storage: not found")
	// ErrNoSender means nobody has ever messaged the queried recipient.
	ErrNoSender = errors.New("storage: no prior sender")
)

// MessageStore persists chat messages and answers the "who talked to me
// last" query the resolution chain depends on.
type MessageStore interface {
	// SaveMessage stores m and fills in m.ID. The recipient must already be
	// resolved; stores may reject a zero RecipientID.
	SaveMessage(ctx context.Context, m *models.Message) error
	// LastSenderTo returns the sender of the most recent message addressed
	// to recipientID, excluding self-addressed messages.
	LastSenderTo(ctx context.Context, recipientID int64) (int64, error)
}

// PickupStore persists pickup requests and their seen flag.
type PickupStore interface {
	// CreatePickup stores p (status pending, unseen) and fills in p.ID.
	CreatePickup(ctx context.Context, p *models.PickupRequest) error
	// MarkPickupSeen flips seen to true. Idempotent; never flips back.
	MarkPickupSeen(ctx context.Context, pickupID int64) error
	// UnseenCount reports pending unseen pickups across the driver's buses.
	// Used by the polling interface; the engine itself only writes.
	UnseenCount(ctx context.Context, driverID int64) (int, error)
}

// Directory answers identity and vehicle-assignment lookups. These back the
// role classification and recipient resolution; every caller treats failures
// as degradable per the fail-safe policy.
type Directory interface {
	// IsDriver reports whether a driver profile exists for userID.
	IsDriver(ctx context.Context, userID int64) (bool, error)
	// DriverOf returns the user id of the driver assigned to busID,
	// or ErrNotFound.
	DriverOf(ctx context.Context, busID int64) (int64, error)
	// Username returns the display name for userID, or ErrNotFound.
	Username(ctx context.Context, userID int64) (string, error)
}
