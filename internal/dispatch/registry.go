package dispatch

import (
	"sync"

	"github.com/example/transit-messaging/internal/observability"
)

var ErrBadTopic = &BadTopicError{}

type BadTopicError struct{}

func (e *BadTopicError) Error() string { return "empty topic name" }

// TopicRegistry is the process-wide pub/sub fabric: topic name -> live member
// set. It is the only shared mutable state in the engine. Mutations hold the
// write lock briefly; Publish snapshots members under the read lock and
// writes to sockets outside it, so a slow connection delays only its own
// frames.
type TopicRegistry struct {
	mu     sync.RWMutex
	topics map[string]map[Sender]struct{}
	conns  map[Sender]map[string]struct{} // reverse index for teardown
}

func NewTopicRegistry() *TopicRegistry {
	return &TopicRegistry{
		topics: make(map[string]map[Sender]struct{}),
		conns:  make(map[Sender]map[string]struct{}),
	}
}

func (r *TopicRegistry) Subscribe(topic string, c Sender) error {
	if topic == "" {
		return ErrBadTopic
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.topics[topic]
	if !ok {
		members = make(map[Sender]struct{})
		r.topics[topic] = members
	}
	members[c] = struct{}{}

	joined, ok := r.conns[c]
	if !ok {
		joined = make(map[string]struct{})
		r.conns[c] = joined
	}
	joined[topic] = struct{}{}
	return nil
}

func (r *TopicRegistry) Unsubscribe(topic string, c Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drop(topic, c)
}

// UnsubscribeAll removes every membership a connection holds. It runs once
// per connection teardown and is safe to call again (or on a connection that
// never subscribed).
func (r *TopicRegistry) UnsubscribeAll(c Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for topic := range r.conns[c] {
		r.drop(topic, c)
	}
	delete(r.conns, c)
}

// drop must be called with the write lock held.
func (r *TopicRegistry) drop(topic string, c Sender) {
	members, ok := r.topics[topic]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.topics, topic)
	}
	if joined, ok := r.conns[c]; ok {
		delete(joined, topic)
		if len(joined) == 0 {
			delete(r.conns, c)
		}
	}
}

// Publish sends one frame to every member of topic and returns how many
// sends succeeded. A topic with no members is a no-op, not an error. Send
// failures are counted and skipped; the failing connection is cleaned up by
// its own read loop.
func (r *TopicRegistry) Publish(topic string, frame any) (int, error) {
	if topic == "" {
		return 0, ErrBadTopic
	}
	r.mu.RLock()
	members := make([]Sender, 0, len(r.topics[topic]))
	for c := range r.topics[topic] {
		members = append(members, c)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range members {
		if err := c.Send(frame); err != nil {
			observability.PublishFailures.Inc()
			continue
		}
		delivered++
	}
	if delivered > 0 {
		observability.FramesDelivered.Add(float64(delivered))
	}
	return delivered, nil
}

// Members reports the current member count of a topic.
func (r *TopicRegistry) Members(topic string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics[topic])
}

// Topics reports how many topics currently have at least one member.
func (r *TopicRegistry) Topics() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics)
}
