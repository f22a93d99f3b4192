package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"skill-gap/internal/infrastructure/events"
)

// Notifier pushes analysis events to the owning user's open connections.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) Notify(_ context.Context, ev events.Event) error {
	if n == nil || n.hub == nil {
		return nil
	}
	userID, err := uuid.Parse(ev.UserID)
	if err != nil {
		return err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	n.hub.Broadcast(userID, b)
	return nil
}
