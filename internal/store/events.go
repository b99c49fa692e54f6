package store

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/keys"
	"github.com/google/uuid"
)

// #region event-row
// Event kinds written to the log.
const (
	KindInitialized     = "identity_initialized"
	KindDeclaration     = "declaration_recorded"
	KindEvolved         = "identity_evolved"
	KindWeightsSet      = "weights_set"
	KindPivotalRecorded = "pivotal_recorded"
	KindClosed          = "identity_closed"
)

// EventRow is one logged notification payload.
type EventRow struct {
	EventID     string
	Address     keys.RecordAddress
	Kind        string
	PayloadJSON string
	CreatedAt   int64
}

// #endregion event-row

// #region log-event
// LogEvent appends a notification payload to the event log. Payloads
// are advisory: the engine never reads them back, indexers do.
func (s *Store) LogEvent(address keys.RecordAddress, kind string, payload any, createdAt int64) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal event payload: %w", err)
	}
	id := uuid.New().String()
	_, err = s.db.Exec(
		`INSERT INTO event_log (event_id, address, kind, payload_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, address[:], kind, string(body), createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("log event: %w", err)
	}
	return id, nil
}

// #endregion log-event

// #region list-events
// ListEvents returns the most recent events for a record.
func (s *Store) ListEvents(address keys.RecordAddress, limit int) ([]EventRow, error) {
	rows, err := s.db.Query(
		`SELECT event_id, address, kind, payload_json, created_at
		 FROM event_log WHERE address = ? ORDER BY created_at DESC, event_id LIMIT ?`,
		address[:], limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var addr []byte
		if err := rows.Scan(&e.EventID, &addr, &e.Kind, &e.PayloadJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		copy(e.Address[:], addr)
		events = append(events, e)
	}
	return events, rows.Err()
}

// #endregion list-events
