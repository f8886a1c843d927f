package model

import "encoding/json"

// Event is a pool notification enriched with sequencing metadata.
type Event struct {
	Seq       uint64      `json:"seq"`
	OpSeq     uint64      `json:"op_seq"`
	EventName string      `json:"event_name"`
	Timestamp uint64      `json:"timestamp"`
	Decoded   interface{} `json:"decoded"`
	EmittedAt string      `json:"emitted_at"`
}

// EventRecord is the JSON representation used when reading events back.
type EventRecord struct {
	Seq       uint64          `json:"seq"`
	OpSeq     uint64          `json:"op_seq"`
	EventName string          `json:"event_name"`
	Timestamp uint64          `json:"timestamp"`
	Decoded   json.RawMessage `json:"decoded"`
	EmittedAt string          `json:"emitted_at"`
}
