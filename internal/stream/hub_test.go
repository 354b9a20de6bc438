package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("tech_001")
	defer hub.Unregister(client)

	payload := []byte(`{"technicianId":"tech_001"}`)
	hub.Broadcast("tech_001", payload)

	select {
	case msg := <-client.Send:
		if string(msg) != string(payload) {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("tech_001")
	if ch != "technician:tech_001:positions" {
		t.Fatalf("unexpected channel: %s", ch)
	}
	if technicianIDFromChannel(ch) != "tech_001" {
		t.Fatalf("unexpected technician id")
	}
	if technicianIDFromChannel("bad") != "" {
		t.Fatalf("expected empty technician id")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("tech_002")
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubRedisBroadcastAndSubscribe(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register("tech_redis")
	defer hub.Unregister(ws)

	hub.Broadcast("tech_redis", []byte("ping"))

	select {
	case msg := <-ws.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for broadcast")
	}

	subscriber := hub.Register("tech_direct")
	defer hub.Unregister(subscriber)

	time.Sleep(20 * time.Millisecond)
	if err := client.Publish(context.Background(), redisChannel("tech_direct"), "pong").Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	select {
	case msg := <-subscriber.Send:
		if string(msg) != "pong" {
			t.Fatalf("unexpected message from redis")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for redis message")
	}
}

func TestHubCrossInstanceRelay(t *testing.T) {
	s := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer clientA.Close()
	clientB := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer clientB.Close()

	hubA := NewHub(clientA)
	hubB := NewHub(clientB)

	ws := hubB.Register("tech_001")
	defer hubB.Unregister(ws)

	time.Sleep(20 * time.Millisecond)
	hubA.Broadcast("tech_001", []byte("pos"))

	select {
	case msg := <-ws.Send:
		if string(msg) != "pos" {
			t.Fatalf("unexpected relayed message")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for relay from the other instance")
	}
}

func TestHubBroadcastDuringUnregister(t *testing.T) {
	hub := NewHub(nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Broadcast("tech_churn", []byte("ping"))
		}
		close(done)
	}()

	for i := 0; i < 200; i++ {
		client := hub.Register("tech_churn")
		hub.Unregister(client)
	}
	<-done
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	clientNode := hub.Register("tech_bad")
	defer hub.Unregister(clientNode)

	hub.Broadcast("tech_bad", []byte("ping"))
}
