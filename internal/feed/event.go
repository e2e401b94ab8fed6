package feed

import (
	"encoding/json"
	"fmt"
)

// Table names the replicated tables the trigger publishes for.
type Table string

const (
	TableCarts     Table = "carts"
	TableWishlists Table = "wishlists"
)

// Event is one row change published by the notify_row_change trigger.
//
// Record is empty when the row did not fit into a notification payload, and
// for the synthetic event sent after the listener reconnects. Subscribers
// then read the row themselves.
type Event struct {
	Table  Table           `json:"table"`
	Op     string          `json:"event"`
	UserID string          `json:"user_id"`
	Record json.RawMessage `json:"record,omitempty"`
	Resync bool            `json:"-"`
}

// HasRecord reports whether the event carries the new row.
func (e Event) HasRecord() bool {
	return len(e.Record) > 0 && string(e.Record) != "null"
}

func parseEvent(payload string) (Event, error) {
	var event Event

	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return Event{}, fmt.Errorf("failed to decode notification payload: %w", err)
	}

	if event.Table == "" || event.UserID == "" {
		return Event{}, fmt.Errorf("notification payload missing table or user_id")
	}

	return event, nil
}
