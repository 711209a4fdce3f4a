package storage

import (
	"context"
	"sync"
	"time"

	"github.com/example/transit-messaging/internal/models"
)

// MemoryStore is the DSN-less fallback and the test double. Same contracts
// as PostgresStore.
type MemoryStore struct {
	mu       sync.RWMutex
	nextMsg  int64
	nextPick int64
	messages []models.Message
	pickups  map[int64]*models.PickupRequest
	drivers  map[int64]bool    // user id -> has driver profile
	buses    map[int64]int64   // bus id -> driver user id
	names    map[int64]string  // user id -> username
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pickups: make(map[int64]*models.PickupRequest),
		drivers: make(map[int64]bool),
		buses:   make(map[int64]int64),
		names:   make(map[int64]string),
	}
}

// AddDriver registers a driver profile for userID.
func (m *MemoryStore) AddDriver(userID int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[userID] = true
	m.names[userID] = name
}

// AddUser registers a plain passenger.
func (m *MemoryStore) AddUser(userID int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[userID] = name
}

// AddBus assigns driverID (a user id with a driver profile) to busID.
func (m *MemoryStore) AddBus(busID, driverID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buses[busID] = driverID
}

func (m *MemoryStore) SaveMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMsg++
	msg.ID = m.nextMsg
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *MemoryStore) LastSenderTo(ctx context.Context, recipientID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.RecipientID == recipientID && msg.SenderID != recipientID {
			return msg.SenderID, nil
		}
	}
	return 0, ErrNoSender
}

func (m *MemoryStore) CreatePickup(ctx context.Context, p *models.PickupRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPick++
	p.ID = m.nextPick
	p.Status = models.PickupPending
	p.Seen = false
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	m.pickups[p.ID] = &cp
	return nil
}

func (m *MemoryStore) MarkPickupSeen(ctx context.Context, pickupID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pickups[pickupID]; ok {
		p.Seen = true
	}
	return nil
}

func (m *MemoryStore) UnseenCount(ctx context.Context, driverID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.pickups {
		if m.buses[p.BusID] == driverID && !p.Seen {
			n++
		}
	}
	return n, nil
}

// Pickup returns a snapshot of a stored pickup request.
func (m *MemoryStore) Pickup(pickupID int64) (models.PickupRequest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pickups[pickupID]
	if !ok {
		return models.PickupRequest{}, false
	}
	return *p, true
}

// Messages returns a snapshot of all persisted messages, oldest first.
func (m *MemoryStore) Messages() []models.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *MemoryStore) IsDriver(ctx context.Context, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[userID], nil
}

func (m *MemoryStore) DriverOf(ctx context.Context, busID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driverID, ok := m.buses[busID]
	if !ok {
		return 0, ErrNotFound
	}
	return driverID, nil
}

func (m *MemoryStore) Username(ctx context.Context, userID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.names[userID]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}
