// Package bus is a small in-process pub/sub message bus with retained
// messages. Services talk to each other exclusively through it; a
// Connection owns its subscriptions and a Subscription is a buffered
// channel of messages.
package bus

import (
	"strings"
	"sync"
)

// Topic is a path of string segments, e.g. {"hal", "state"}.
type Topic []string

// T builds a Topic from segments.
func T(segments ...string) Topic { return Topic(segments) }

// String renders the topic as a slash-joined path (diagnostics only).
func (t Topic) String() string { return strings.Join(t, "/") }

// Append returns a new Topic with extra segments added.
func (t Topic) Append(segments ...string) Topic {
	out := make(Topic, 0, len(t)+len(segments))
	out = append(out, t...)
	return append(out, segments...)
}

// Equal reports segment-wise equality.
func (t Topic) Equal(o Topic) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// Message is one bus datum. Retained messages are stored at their topic and
// replayed to late subscribers; a nil Retained payload clears the slot.
// ReplyTo, when set, names the topic the receiver should answer on.
type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// CanReply reports whether the sender asked for an answer.
func (m *Message) CanReply() bool { return len(m.ReplyTo) > 0 }

// Subscription is one receiver attached to a topic node.
type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

// Bus routes messages between connections.
type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// NewBus creates a bus; queueLen is each subscription's channel depth.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

// Wildcard matches any single segment in a subscription topic.
const Wildcard = "+"

// Publish delivers to every subscriber whose topic matches, where a
// subscription segment of Wildcard matches any one published segment. When
// a subscriber's queue is full the oldest message is dropped to make room;
// slow consumers lose history, never block publishers.
//
// Retained messages are stored under the exact published topic and replayed
// only to exact-topic subscribers.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	deliverTree(b.root, msg.Topic, msg)

	if msg.Retained {
		n := b.root
		for _, seg := range msg.Topic {
			if n.children == nil {
				n.children = map[string]*node{}
			}
			child, ok := n.children[seg]
			if !ok {
				child = &node{}
				n.children[seg] = child
			}
			n = child
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
}

func deliverTree(n *node, rest Topic, msg *Message) {
	if len(rest) == 0 {
		for _, sub := range n.subs {
			select {
			case sub.ch <- msg:
			default:
				<-sub.ch
				sub.ch <- msg
			}
		}
		return
	}
	if child, ok := n.children[rest[0]]; ok {
		deliverTree(child, rest[1:], msg)
	}
	if child, ok := n.children[Wildcard]; ok && rest[0] != Wildcard {
		deliverTree(child, rest[1:], msg)
	}
}

func (b *Bus) subscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, seg := range sub.topic {
		if n.children == nil {
			n.children = map[string]*node{}
		}
		child, ok := n.children[seg]
		if !ok {
			child = &node{}
			n.children[seg] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	if n.retained != nil {
		select {
		case sub.ch <- n.retained:
		default:
		}
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	path := make([]*node, 0, len(sub.topic))
	for _, seg := range sub.topic {
		child, ok := n.children[seg]
		if !ok {
			return
		}
		path = append(path, n)
		n = child
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	// Prune now-empty nodes bottom-up.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent := path[i]
		child := parent.children[sub.topic[i]]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, sub.topic[i])
		} else {
			break
		}
	}
}

// Connection is one client's attachment to the bus.
type Connection struct {
	bus  *Bus
	mu   sync.Mutex
	subs []*Subscription
	id   string
}

// NewConnection creates a connection; id is for diagnostics.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

// NewMessage is a convenience constructor.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Reply answers m on its ReplyTo topic; a no-op when none was given.
func (c *Connection) Reply(m *Message, payload any, retained bool) {
	if !m.CanReply() {
		return
	}
	c.bus.Publish(&Message{Topic: m.ReplyTo, Payload: payload, Retained: retained})
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.subscribe(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe detaches and closes one subscription.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
