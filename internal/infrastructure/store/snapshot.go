package store

import (
	"encoding/json"
	"time"
)

// SchemaVersion is the current layout of persisted snapshots.
const SchemaVersion = 1

// Snapshot is the envelope written to a KV. Only State is owned by the
// aggregate; derived values are never stored in it.
type Snapshot struct {
	Key           string          `json:"key"`
	SchemaVersion int             `json:"schema_version"`
	State         json.RawMessage `json:"state"` // Serialized aggregate state
	SavedAt       time.Time       `json:"saved_at"`
}

// EncodeSnapshot wraps state in a Snapshot envelope.
func EncodeSnapshot(key string, state any, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Snapshot{
		Key:           key,
		SchemaVersion: SchemaVersion,
		State:         raw,
		SavedAt:       now,
	})
}

// DecodeSnapshot parses an envelope written by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
