package topic

import "testing"

func TestGrammar(t *testing.T) {
	if got := DriverInbox(8); got != "inbox:driver:8" {
		t.Fatalf("driver inbox: %s", got)
	}
	if got := UserInbox(42); got != "inbox:user:42" {
		t.Fatalf("user inbox: %s", got)
	}
	if got := Vehicle(2); got != "vehicle:2" {
		t.Fatalf("vehicle: %s", got)
	}
	if got := Pair(42, 8); got != "pair:user_42_driver_8" {
		t.Fatalf("pair: %s", got)
	}
}

func TestParsePairToken(t *testing.T) {
	uid, did, ok := ParsePairToken("user_42_driver_8")
	if !ok || uid != 42 || did != 8 {
		t.Fatalf("got uid=%d did=%d ok=%v", uid, did, ok)
	}

	bad := []string{"", "user_42", "user_x_driver_8", "user_42_driver_", "driver_8_user_42", "user_42_driver_8_extra"}
	for _, token := range bad {
		if _, _, ok := ParsePairToken(token); ok {
			t.Fatalf("expected reject for %q", token)
		}
	}
}

func TestPairTokenRoundTrip(t *testing.T) {
	token := PairToken(7, 9)
	uid, did, ok := ParsePairToken(token)
	if !ok || uid != 7 || did != 9 {
		t.Fatalf("round trip failed: %s", token)
	}
	if FromPairToken(token) != Pair(7, 9) {
		t.Fatal("FromPairToken mismatch")
	}
}
