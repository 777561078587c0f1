package events

import (
	"context"
	"sync"
	"time"
)

type Type string

const (
	CatalogChanged        Type = "catalog_changed"
	ImportSubmitted       Type = "import_submitted"
	FinalizationStarted   Type = "finalization_started"
	FinalizationCompleted Type = "finalization_completed"
)

// Event is a change notification fanned out to realtime subscribers.
// ProjectID is empty for changes that concern every project.
type Event struct {
	Type      Type   `json:"type"`
	ProjectID string `json:"projectId,omitempty"`
	JobID     string `json:"jobId,omitempty"`
	SkillID   string `json:"skillId,omitempty"`
	Count     int    `json:"count,omitempty"`
	Timestamp string `json:"timestamp"`
}

func New(t Type, projectID string) Event {
	return Event{Type: t, ProjectID: projectID, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Types() []Type {
	evs := r.Events()
	out := make([]Type, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Type)
	}
	return out
}
