// Package events defines the realtime change notifications published after
// every committed write.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Table names a realtime topic.
type Table string

const (
	TableProducts Table = "products"
	TableContent  Table = "content"
	TableSettings Table = "website_settings"
)

// Tables lists every topic in publish order.
var Tables = []Table{TableProducts, TableContent, TableSettings}

// ParseTable validates a topic name.
func ParseTable(s string) (Table, error) {
	for _, t := range Tables {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown table %q", s)
}

// Kind is the row operation that produced a change.
type Kind string

const (
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

// ChangeEvent is the wire form of a row change. New is set for inserts and
// updates, Old for updates and deletes.
type ChangeEvent struct {
	Table      Table           `json:"table"`
	Kind       Kind            `json:"kind"`
	New        json.RawMessage `json:"new,omitempty"`
	Old        json.RawMessage `json:"old,omitempty"`
	CommitTime time.Time       `json:"commit_time"`
}

// NewChangeEvent marshals the row snapshots. Nil rows are omitted.
func NewChangeEvent[T any](table Table, kind Kind, newRow, oldRow *T) (ChangeEvent, error) {
	evt := ChangeEvent{Table: table, Kind: kind, CommitTime: time.Now().UTC()}
	if newRow != nil {
		raw, err := json.Marshal(newRow)
		if err != nil {
			return ChangeEvent{}, fmt.Errorf("failed to marshal new row: %w", err)
		}
		evt.New = raw
	}
	if oldRow != nil {
		raw, err := json.Marshal(oldRow)
		if err != nil {
			return ChangeEvent{}, fmt.Errorf("failed to marshal old row: %w", err)
		}
		evt.Old = raw
	}
	return evt, nil
}

// Change is a decoded, typed ChangeEvent.
type Change[T any] struct {
	Table Table
	Kind  Kind
	New   *T
	Old   *T
}

// Decode turns a wire event into a typed change.
func Decode[T any](evt ChangeEvent) (Change[T], error) {
	change := Change[T]{Table: evt.Table, Kind: evt.Kind}
	if len(evt.New) > 0 && string(evt.New) != "null" {
		var row T
		if err := json.Unmarshal(evt.New, &row); err != nil {
			return change, fmt.Errorf("failed to decode new %s row: %w", evt.Table, err)
		}
		change.New = &row
	}
	if len(evt.Old) > 0 && string(evt.Old) != "null" {
		var row T
		if err := json.Unmarshal(evt.Old, &row); err != nil {
			return change, fmt.Errorf("failed to decode old %s row: %w", evt.Table, err)
		}
		change.Old = &row
	}
	return change, nil
}
