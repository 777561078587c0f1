package ws

import (
	"encoding/json"
	"testing"
	"time"

	"skill-catalog/internal/events"

	"github.com/stretchr/testify/require"
)

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func TestHub_DeliverFiltersByProject(t *testing.T) {
	h := NewHub(nil)
	done := make(chan struct{})
	defer close(done)
	go h.Run(done)

	all := &Client{hub: h, send: make(chan []byte, 4)}
	p1 := &Client{hub: h, send: make(chan []byte, 4), projectID: "p1"}
	p2 := &Client{hub: h, send: make(chan []byte, 4), projectID: "p2"}
	h.Register(all)
	h.Register(p1)
	h.Register(p2)
	waitClients(t, h, 3)

	h.Deliver(events.New(events.FinalizationCompleted, "p1"))

	for _, c := range []*Client{all, p1} {
		select {
		case raw := <-c.send:
			var e events.Event
			require.NoError(t, json.Unmarshal(raw, &e))
			require.Equal(t, events.FinalizationCompleted, e.Type)
			require.Equal(t, "p1", e.ProjectID)
		case <-time.After(time.Second):
			t.Fatalf("expected event for client %q", c.projectID)
		}
	}
	select {
	case <-p2.send:
		t.Fatalf("p2 must not receive p1 events")
	case <-time.After(50 * time.Millisecond):
	}

	h.Unregister(p2)
	waitClients(t, h, 2)
}
