package router

import (
	"context"
	"testing"

	"github.com/example/transit-messaging/internal/models"
)

func TestPickupNotifiesDriverAndMarksSeen(t *testing.T) {
	reg := newFakeRegistry()
	reg.members["inbox:driver:8"] = 1
	store := seededStore()
	s := newService(reg, store)

	s.HandlePickup(context.Background(), passenger(7, "rider7"), models.InboundFrame{
		Type: "pickup_request", BusID: 2, Stop: "Balkhu", Message: "wait about 5 min.",
	})

	frames := reg.published["inbox:driver:8"]
	if len(frames) != 1 {
		t.Fatalf("driver frames = %d, want 1", len(frames))
	}
	n := frames[0].(models.PickupNotification)
	if n.UserID != 7 || n.BusID != 2 || n.Stop != "Balkhu" || n.PickupID == 0 || n.Username != "rider7" {
		t.Fatalf("notification = %+v", n)
	}

	p, ok := store.Pickup(n.PickupID)
	if !ok {
		t.Fatal("pickup not persisted")
	}
	if !p.Seen {
		t.Fatal("seen flag not set after live delivery")
	}
	if p.Status != models.PickupPending {
		t.Fatalf("status = %s, engine must not advance it", p.Status)
	}
}

func TestPickupStaysUnseenWithoutLiveDriver(t *testing.T) {
	reg := newFakeRegistry() // zero members everywhere
	store := seededStore()
	s := newService(reg, store)

	s.HandlePickup(context.Background(), passenger(7, "rider7"), models.InboundFrame{
		Type: "pickup_request", BusID: 2, Stop: "Balkhu",
	})

	if len(reg.published["inbox:driver:8"]) != 1 {
		t.Fatal("publish should still be attempted")
	}
	p, ok := store.Pickup(1)
	if !ok {
		t.Fatal("pickup not persisted")
	}
	if p.Seen {
		t.Fatal("seen must stay false when nobody received the frame")
	}

	n, err := store.UnseenCount(context.Background(), 8)
	if err != nil || n != 1 {
		t.Fatalf("unseen count = %d err = %v", n, err)
	}
}

func TestPickupForUnknownBusIsPersistedButNotDelivered(t *testing.T) {
	reg := newFakeRegistry()
	store := seededStore()
	s := newService(reg, store)

	s.HandlePickup(context.Background(), passenger(7, "rider7"), models.InboundFrame{
		Type: "pickup_request", BusID: 99, Stop: "Balkhu",
	})

	if len(reg.published) != 0 {
		t.Fatalf("published to %v for unknown bus", reg.topics())
	}
	if _, ok := store.Pickup(1); !ok {
		t.Fatal("request should persist even without a reachable driver")
	}
}

func TestMarkSeenIsIdempotentAndMonotonic(t *testing.T) {
	store := seededStore()
	ctx := context.Background()
	p := models.PickupRequest{UserID: 7, BusID: 2, Stop: "Balkhu"}
	if err := store.CreatePickup(ctx, &p); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := store.MarkPickupSeen(ctx, p.ID); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := store.Pickup(p.ID)
	if !got.Seen {
		t.Fatal("seen not set")
	}
}
