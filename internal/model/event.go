package model

import (
	"time"

	"github.com/google/uuid"
)

// EventRecord is a persisted callback outcome.
type EventRecord struct {
	EventID   uuid.UUID
	Outcome   *Outcome
	CreatedAt time.Time
}

type EventRecordView struct {
	EventID   uuid.UUID `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
	OutcomeView
}

func (r *EventRecord) View() EventRecordView {
	return EventRecordView{
		EventID:     r.EventID,
		CreatedAt:   r.CreatedAt,
		OutcomeView: r.Outcome.View(),
	}
}
