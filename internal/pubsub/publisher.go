package pubsub

import (
	"context"
	"encoding/json"

	"github.com/wam-arcade/games-service/internal/model"
)

// Envelope is the wire format for every realtime message
type Envelope struct {
	Kind    model.EventKind `json:"kind"`
	Payload any             `json:"payload"`
}

// Publisher broadcasts envelopes to named groups. Delivery is
// best-effort: subscribers that cannot keep up are dropped, and a
// group with no subscribers discards the message.
type Publisher interface {
	SendToGroup(ctx context.Context, group string, env Envelope) error
}

// SendToGroup publishes an envelope to every client subscribed to the
// group. Groups without a hub have no subscribers; the message is
// discarded without error.
func (m *HubManager) SendToGroup(ctx context.Context, group string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	m.mu.RLock()
	hub, ok := m.hubs[group]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	hub.Broadcast(data)
	return nil
}

var _ Publisher = (*HubManager)(nil)
