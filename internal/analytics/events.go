// Package analytics records what users ask the engine: every answered query
// becomes a QueryEvent, published to Kafka and folded into in-process
// aggregates served over HTTP.
package analytics

import "time"

type EventType string

const (
	EventQuery      EventType = "query"
	EventZeroResult EventType = "zero_result"
	EventRejected   EventType = "rejected"
)

type QueryEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Parsed    string    `json:"parsed,omitempty"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Stemming  bool      `json:"stemming"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Classify sets Type from the outcome fields.
func (e *QueryEvent) Classify() {
	switch {
	case e.Error != "":
		e.Type = EventRejected
	case e.TotalHits == 0:
		e.Type = EventZeroResult
	default:
		e.Type = EventQuery
	}
}
