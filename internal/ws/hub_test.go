package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-gap/internal/infrastructure/events"
)

func quietHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestHub_DeliversOnlyToAddressedUser(t *testing.T) {
	h := quietHub(t)
	alice, bob := uuid.New(), uuid.New()
	ca := NewClient(h, nil, alice)
	cb := NewClient(h, nil, bob)
	h.Register(ca)
	h.Register(cb)
	waitFor(t, func() bool { return h.ClientCount(alice) == 1 && h.ClientCount(bob) == 1 })

	h.Broadcast(alice, []byte("hi"))

	select {
	case got := <-ca.send:
		assert.Equal(t, "hi", string(got))
	case <-time.After(2 * time.Second):
		t.Fatalf("alice got nothing")
	}
	select {
	case got := <-cb.send:
		t.Fatalf("bob should not receive %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := quietHub(t)
	uid := uuid.New()
	c := NewClient(h, nil, uid)
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount(uid) == 1 })

	h.Unregister(c)
	waitFor(t, func() bool { return h.ClientCount(uid) == 0 })
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestNotifier_MarshalsEvent(t *testing.T) {
	h := quietHub(t)
	uid := uuid.New()
	c := NewClient(h, nil, uid)
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount(uid) == 1 })

	n := NewNotifier(h)
	require.NoError(t, n.Notify(context.Background(), events.Event{Type: events.TypeAnalysisCompleted, UserID: uid.String(), Overall: 72}))

	select {
	case got := <-c.send:
		var ev events.Event
		require.NoError(t, json.Unmarshal(got, &ev))
		assert.Equal(t, events.TypeAnalysisCompleted, ev.Type)
		assert.Equal(t, 72, ev.Overall)
	case <-time.After(2 * time.Second):
		t.Fatalf("no event delivered")
	}

	assert.Error(t, n.Notify(context.Background(), events.Event{UserID: "nope"}))
}

func TestHub_StoppedHubNeverBlocks(t *testing.T) {
	h := NewHub(log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	uid := uuid.New()
	c := NewClient(h, nil, uid)
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount(uid) == 1 })

	cancel()
	<-stopped
	_, ok := <-c.send
	assert.False(t, ok, "stop closes connected clients")

	unregistered := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			h.Unregister(c)
		}
		close(unregistered)
	}()
	select {
	case <-unregistered:
	case <-time.After(2 * time.Second):
		t.Fatalf("Unregister blocked after hub stopped")
	}

	late := NewClient(h, nil, uid)
	h.Register(late)
	_, ok = <-late.send
	assert.False(t, ok, "late client is closed immediately")
	assert.Equal(t, 0, h.ClientCount(uid))
}
