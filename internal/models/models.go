package models

import "time"

// Role is derived per connection by checking whether a driver profile exists
// for the user. It is fixed for the lifetime of one connection.
type Role string

const (
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

// Identity is a connected principal. UserID 0 means anonymous (allowed only
// on the vehicle location feed).
type Identity struct {
	UserID int64
	Name   string
	Role   Role
}

func (id Identity) Anonymous() bool { return id.UserID == 0 }

// Message is a chat message. RecipientID is zero until the resolution chain
// has produced a concrete recipient; it is never persisted unresolved.
type Message struct {
	ID          int64
	SenderID    int64
	RecipientID int64
	BusID       int64 // 0 when the message is not scoped to a bus
	Content     string
	CreatedAt   time.Time
}

type PickupStatus string

const (
	PickupPending      PickupStatus = "pending"
	PickupAcknowledged PickupStatus = "acknowledged"
	PickupRejected     PickupStatus = "rejected"
)

// PickupRequest is a passenger's "pick me up here" note to a bus driver.
// Seen flips false->true exactly once, on first successful delivery to the
// driver's inbox; nothing in this engine ever resets it.
type PickupRequest struct {
	ID        int64
	UserID    int64
	BusID     int64
	Stop      string
	Note      string
	Status    PickupStatus
	Seen      bool
	CreatedAt time.Time
}

// VehicleLocationSample is a bus's last known position. Each update
// overwrites the previous one; the engine keeps no history.
type VehicleLocationSample struct {
	BusID int64     `json:"bus_id"`
	Lat   float64   `json:"lat"`
	Lng   float64   `json:"lng"`
	At    time.Time `json:"at"`
}

// InboundFrame is the envelope read off a websocket. Type selects which
// fields are meaningful; everything else is ignored.
type InboundFrame struct {
	Type string `json:"type"` // location | chat_message | pickup_request

	// location
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	// chat_message
	RecipientID *int64 `json:"recipient_id"`
	Content     string `json:"content"`

	// chat_message / pickup_request
	BusID int64 `json:"bus_id"`

	// pickup_request
	Stop    string `json:"stop"`
	Message string `json:"message"`
}

// LocationUpdate is broadcast on vehicle:<id>.
type LocationUpdate struct {
	Type  string  `json:"type"` // "location_update"
	BusID int64   `json:"bus_id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// ChatFrame is the rendered chat message sent to inbox and pair topics.
// Field names are part of the legacy wire format.
type ChatFrame struct {
	Type        string `json:"type"` // "chat_message"
	MessageID   int64  `json:"message_id"`
	SenderID    int64  `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	RecipientID int64  `json:"recipient_id"`
	Content     string `json:"content"`
	BusID       int64  `json:"bus_id,omitempty"`
	SentAt      string `json:"sent_at"`
}

// PickupNotification is pushed to the driver's inbox when a pickup request
// is created while the driver is connected.
type PickupNotification struct {
	Type     string `json:"type"` // "pickup_notification"
	PickupID int64  `json:"pickup_id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"user_username"`
	BusID    int64  `json:"bus_id"`
	Stop     string `json:"stop"`
	Message  string `json:"message"`
}
