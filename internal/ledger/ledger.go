// Package ledger provides an append-only event history for light-manager.
// It records fixture transitions and sensor fallbacks so misbehavior can be
// diagnosed after the fact without a debugger attached to the loop.
package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event in the ledger
type EventType string

const (
	EventFixtureOn      EventType = "fixture_on"
	EventFixtureOff     EventType = "fixture_off"
	EventSensorFallback EventType = "sensor_fallback"
	EventStarted        EventType = "controller_started"
	EventStopped        EventType = "controller_stopped"
)

// Entry represents a single event in the ledger
type Entry struct {
	ID        int64
	EventType EventType
	Timestamp time.Time
	Payload   map[string]any
	Fixture   string
	CycleID   string
}

// Ledger provides append-only event logging
type Ledger struct {
	db *sql.DB
}

// New creates a new Ledger using the provided database connection
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Append adds a new event to the ledger. The cycle ID groups every event
// recorded during one control cycle.
func (l *Ledger) Append(eventType EventType, fixture, cycleID string, payload map[string]any) error {
	var payloadJSON []byte
	var err error

	if payload != nil {
		payloadJSON, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	now := time.Now().UTC().Unix()

	_, err = l.db.Exec(`
		INSERT INTO event_ledger (event_type, timestamp, payload, fixture, cycle_id)
		VALUES (?, ?, ?, ?, ?)
	`, string(eventType), now, string(payloadJSON), fixture, cycleID)

	return err
}

// GetByFixture returns the most recent entries for a fixture.
func (l *Ledger) GetByFixture(fixture string, limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, event_type, timestamp, payload, fixture, cycle_id
		FROM event_ledger
		WHERE fixture = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, fixture, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return l.scanEntries(rows)
}

// GetByType returns the most recent entries of one event type.
func (l *Ledger) GetByType(eventType EventType, limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, event_type, timestamp, payload, fixture, cycle_id
		FROM event_ledger
		WHERE event_type = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, string(eventType), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return l.scanEntries(rows)
}

// DeleteOlderThan removes entries older than the retention period.
// Returns the number of deleted rows.
func (l *Ledger) DeleteOlderThan(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Unix()

	res, err := l.db.Exec(`
		DELETE FROM event_ledger WHERE timestamp < ?
	`, cutoff)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (l *Ledger) scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry

	for rows.Next() {
		var entry Entry
		var eventType, payloadStr string
		var fixture, cycleID sql.NullString
		var ts int64

		if err := rows.Scan(&entry.ID, &eventType, &ts, &payloadStr, &fixture, &cycleID); err != nil {
			return nil, err
		}

		entry.EventType = EventType(eventType)
		entry.Timestamp = time.Unix(ts, 0).UTC()
		entry.Fixture = fixture.String
		entry.CycleID = cycleID.String

		if payloadStr != "" {
			if err := json.Unmarshal([]byte(payloadStr), &entry.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
