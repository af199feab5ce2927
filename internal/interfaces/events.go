package interfaces

import "context"

// EventType represents the event categories published by the engine
type EventType string

const (
	EventMetricsIngested   EventType = "metrics_ingested"
	EventAnalysisCompleted EventType = "analysis_completed"
	EventAlertRaised       EventType = "alert_raised"
)

// Event is one published event with its payload
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler handles a published event
type EventHandler func(ctx context.Context, event Event) error

// EventService is the pub/sub bus connecting the engine to its consumers
type EventService interface {
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish delivers the event to subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// PublishSync delivers the event and waits for all handlers
	PublishSync(ctx context.Context, event Event) error
}
