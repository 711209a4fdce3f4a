package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/transit-messaging/internal/models"
)

// PostgresStore implements MessageStore, PickupStore and Directory on one
// *sql.DB. Schema lives in migrations/001_create_messaging.sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) SaveMessage(ctx context.Context, m *models.Message) error {
	if m.RecipientID == 0 {
		return fmt.Errorf("save message: unresolved recipient")
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	var busID sql.NullInt64
	if m.BusID != 0 {
		busID = sql.NullInt64{Int64: m.BusID, Valid: true}
	}
	return p.db.QueryRowContext(ctx,
		`INSERT INTO messages(sender_id, recipient_id, bus_id, content, created_at) VALUES($1,$2,$3,$4,$5) RETURNING id`,
		m.SenderID, m.RecipientID, busID, m.Content, m.CreatedAt).Scan(&m.ID)
}

func (p *PostgresStore) LastSenderTo(ctx context.Context, recipientID int64) (int64, error) {
	var senderID int64
	err := p.db.QueryRowContext(ctx,
		`SELECT sender_id FROM messages WHERE recipient_id=$1 AND sender_id<>$1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		recipientID).Scan(&senderID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoSender
	}
	if err != nil {
		return 0, err
	}
	return senderID, nil
}

func (p *PostgresStore) CreatePickup(ctx context.Context, pr *models.PickupRequest) error {
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = time.Now()
	}
	pr.Status = models.PickupPending
	pr.Seen = false
	return p.db.QueryRowContext(ctx,
		`INSERT INTO pickup_requests(user_id, bus_id, stop, note, status, seen, created_at) VALUES($1,$2,$3,$4,$5,false,$6) RETURNING id`,
		pr.UserID, pr.BusID, pr.Stop, pr.Note, pr.Status, pr.CreatedAt).Scan(&pr.ID)
}

func (p *PostgresStore) MarkPickupSeen(ctx context.Context, pickupID int64) error {
	_, err := p.db.ExecContext(ctx, `UPDATE pickup_requests SET seen=true WHERE id=$1`, pickupID)
	return err
}

func (p *PostgresStore) UnseenCount(ctx context.Context, driverID int64) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT count(*) FROM pickup_requests pr
		   JOIN buses b ON b.id = pr.bus_id
		   JOIN drivers d ON d.id = b.driver_id
		  WHERE d.user_id=$1 AND NOT pr.seen`, driverID).Scan(&n)
	return n, err
}

func (p *PostgresStore) IsDriver(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM drivers WHERE user_id=$1)`, userID).Scan(&exists)
	return exists, err
}

func (p *PostgresStore) DriverOf(ctx context.Context, busID int64) (int64, error) {
	var userID int64
	err := p.db.QueryRowContext(ctx,
		`SELECT d.user_id FROM buses b JOIN drivers d ON d.id = b.driver_id WHERE b.id=$1`,
		busID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func (p *PostgresStore) Username(ctx context.Context, userID int64) (string, error) {
	var name string
	err := p.db.QueryRowContext(ctx, `SELECT username FROM users WHERE id=$1`, userID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }
