package dispatch

import (
	"errors"
	"sync"
	"testing"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []any
	fail   bool
}

func (f *fakeConn) Send(frame any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send fail")
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestPublishDeliversToMembers(t *testing.T) {
	r := NewTopicRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	if err := r.Subscribe("inbox:driver:8", a); err != nil {
		t.Fatal(err)
	}
	if err := r.Subscribe("inbox:driver:8", b); err != nil {
		t.Fatal(err)
	}

	n, err := r.Publish("inbox:driver:8", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("delivered = %d, want 2", n)
	}
	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("frames a=%d b=%d", a.count(), b.count())
	}
}

func TestPublishEmptyTopicIsNoop(t *testing.T) {
	r := NewTopicRegistry()
	n, err := r.Publish("inbox:user:404", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("delivered = %d, want 0", n)
	}
}

func TestPublishBadTopic(t *testing.T) {
	r := NewTopicRegistry()
	if _, err := r.Publish("", "x"); err == nil {
		t.Fatal("expected error for empty topic")
	}
	if err := r.Subscribe("", &fakeConn{}); err == nil {
		t.Fatal("expected error for empty topic subscribe")
	}
}

func TestUnsubscribeAllLeavesNoReferences(t *testing.T) {
	r := NewTopicRegistry()
	c := &fakeConn{}
	stay := &fakeConn{}
	topics := []string{"inbox:user:42", "pair:user_42_driver_8", "vehicle:2"}
	for _, topic := range topics {
		if err := r.Subscribe(topic, c); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Subscribe("vehicle:2", stay); err != nil {
		t.Fatal(err)
	}

	r.UnsubscribeAll(c)

	for _, topic := range topics {
		n, _ := r.Publish(topic, "frame")
		if topic == "vehicle:2" {
			if n != 1 {
				t.Fatalf("vehicle:2 delivered = %d, want 1 (remaining member only)", n)
			}
		} else if n != 0 {
			t.Fatalf("%s delivered = %d after teardown, want 0", topic, n)
		}
	}
	if c.count() != 0 {
		t.Fatalf("torn-down connection received %d frames", c.count())
	}

	// Second teardown is a no-op, as is tearing down a stranger.
	r.UnsubscribeAll(c)
	r.UnsubscribeAll(&fakeConn{})

	if got := r.Topics(); got != 1 {
		t.Fatalf("topics = %d, want 1", got)
	}
}

func TestSendFailureDoesNotBlockOthers(t *testing.T) {
	r := NewTopicRegistry()
	broken := &fakeConn{fail: true}
	ok := &fakeConn{}
	_ = r.Subscribe("vehicle:2", broken)
	_ = r.Subscribe("vehicle:2", ok)

	n, err := r.Publish("vehicle:2", "frame")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("delivered = %d, want 1", n)
	}
	if ok.count() != 1 {
		t.Fatal("healthy member missed the frame")
	}
}

func TestConcurrentSubscribePublish(t *testing.T) {
	r := NewTopicRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &fakeConn{}
			_ = r.Subscribe("vehicle:1", c)
			_, _ = r.Publish("vehicle:1", "frame")
			r.UnsubscribeAll(c)
		}()
	}
	wg.Wait()
	if got := r.Members("vehicle:1"); got != 0 {
		t.Fatalf("members = %d after all teardowns", got)
	}
}
