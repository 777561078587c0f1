package ws

import (
	"encoding/json"

	"skill-catalog/internal/events"
)

// Deliver broadcasts e to the clients watching its project. It is the local
// sink of the event bus.
func (h *Hub) Deliver(e events.Event) {
	if h == nil {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	h.Broadcast(e.ProjectID, b)
}
