package bus

import (
	"testing"
	"time"
)

func recv(t *testing.T, sub *Subscription) *Message {
	t.Helper()
	select {
	case got := <-sub.Channel():
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("config", "hal"))

	conn.Publish(conn.NewMessage(T("config", "hal"), "hello", false))

	got := recv(t, sub)
	if got.Payload.(string) != "hello" {
		t.Errorf("expected payload 'hello', got %v", got.Payload)
	}
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("config", "hal"), "persist", true))

	// Late subscriber still sees the retained payload.
	sub := conn.Subscribe(T("config", "hal"))
	got := recv(t, sub)
	if got.Payload.(string) != "persist" {
		t.Errorf("expected retained payload 'persist', got %v", got.Payload)
	}
}

func TestRetainedClear(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("hal", "state"), "ready", true))
	conn.Publish(conn.NewMessage(T("hal", "state"), nil, true))

	sub := conn.Subscribe(T("hal", "state"))
	select {
	case got := <-sub.Channel():
		t.Fatalf("expected no retained message after clear, got %v", got.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNonMatchingTopic(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("a", "b"))
	conn.Publish(conn.NewMessage(T("a", "c"), 1, false))

	select {
	case got := <-sub.Channel():
		t.Fatalf("unexpected delivery: %v", got.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("x"))
	for i := 0; i < 5; i++ {
		conn.Publish(conn.NewMessage(T("x"), i, false))
	}

	// Queue depth 2: only the two most recent survive.
	if got := recv(t, sub); got.Payload.(int) != 3 {
		t.Errorf("expected 3, got %v", got.Payload)
	}
	if got := recv(t, sub); got.Payload.(int) != 4 {
		t.Errorf("expected 4, got %v", got.Payload)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("y"))
	sub.Unsubscribe()

	conn.Publish(conn.NewMessage(T("y"), "late", false))

	if _, ok := <-sub.ch; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
}

func TestWildcardSubscription(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("hal", "cap", Wildcard, Wildcard, Wildcard, "control", Wildcard))

	conn.Publish(conn.NewMessage(T("hal", "cap", "io", "pwm", "servo0", "control", "set_duty"), 7, false))

	got := recv(t, sub)
	if got.Payload.(int) != 7 {
		t.Errorf("expected 7, got %v", got.Payload)
	}
	if got.Topic.String() != "hal/cap/io/pwm/servo0/control/set_duty" {
		t.Errorf("unexpected topic %q", got.Topic.String())
	}
}

func TestReplyTo(t *testing.T) {
	b := NewBus(2)
	server := b.NewConnection("server")
	client := b.NewConnection("client")

	req := server.Subscribe(T("svc", "op"))
	rep := client.Subscribe(T("client", "reply", "1"))

	client.Publish(&Message{Topic: T("svc", "op"), Payload: "ping", ReplyTo: T("client", "reply", "1")})

	got := recv(t, req)
	server.Publish(server.NewMessage(got.ReplyTo, "pong", false))

	if got := recv(t, rep); got.Payload.(string) != "pong" {
		t.Errorf("expected 'pong', got %v", got.Payload)
	}
}
