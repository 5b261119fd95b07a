package knowledge

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kestrelworks/resolv/pkg/models"
)

// LedgerRecord is one terminal session entry in the append-only session
// ledger. Every session id has exactly one such record.
type LedgerRecord struct {
	SessionID      string
	TaskID         string
	State          models.SessionState
	StartedAt      time.Time
	Duration       time.Duration
	QualityScore   float64
	WorkersSpawned int
	Summary        string
	FailureStage   string
	FailureMessage string
}

// AppendLedger writes the terminal record for a session. It fails if a
// record for the session id already exists; the ledger is append-only.
func (s *Store) AppendLedger(r *LedgerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, task_id, state, started_at, duration_ms, quality_score, workers_spawned, summary, failure_stage, failure_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.SessionID, r.TaskID, string(r.State), formatTime(r.StartedAt), r.Duration.Milliseconds(),
		r.QualityScore, r.WorkersSpawned, r.Summary, r.FailureStage, r.FailureMessage)
	if err != nil {
		return fmt.Errorf("append session ledger: %w", err)
	}
	return nil
}

// GetLedger retrieves the terminal record for a session id.
// Returns nil, nil when no record exists.
func (s *Store) GetLedger(sessionID string) (*LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, task_id, state, started_at, duration_ms, quality_score, workers_spawned, summary, failure_stage, failure_message
		FROM sessions WHERE id = ?
	`, sessionID)

	r, err := scanLedger(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger record: %w", err)
	}
	return r, nil
}

// ListLedger returns the most recent terminal session records, newest
// first, optionally filtered by state.
func (s *Store) ListLedger(state *models.SessionState, limit int) ([]*LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows *sql.Rows
	var err error
	if state != nil {
		rows, err = s.db.Query(`
			SELECT id, task_id, state, started_at, duration_ms, quality_score, workers_spawned, summary, failure_stage, failure_message
			FROM sessions WHERE state = ? ORDER BY started_at DESC LIMIT ?
		`, string(*state), limit)
	} else {
		rows, err = s.db.Query(`
			SELECT id, task_id, state, started_at, duration_ms, quality_score, workers_spawned, summary, failure_stage, failure_message
			FROM sessions ORDER BY started_at DESC LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var records []*LedgerRecord
	for rows.Next() {
		r, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// PurgeLedger deletes terminal records older than the given duration.
// Returns the number of records deleted.
func (s *Store) PurgeLedger(olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := formatTime(time.Now().Add(-olderThan))
	result, err := s.db.Exec(`DELETE FROM sessions WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge ledger: %w", err)
	}
	return result.RowsAffected()
}

func scanLedger(sc scanner) (*LedgerRecord, error) {
	var r LedgerRecord
	var state, startedAt string
	var durationMS int64
	var summary, failureStage, failureMessage sql.NullString
	if err := sc.Scan(&r.SessionID, &r.TaskID, &state, &startedAt, &durationMS,
		&r.QualityScore, &r.WorkersSpawned, &summary, &failureStage, &failureMessage); err != nil {
		return nil, err
	}
	r.State = models.SessionState(state)
	r.StartedAt, _ = parseTime(startedAt)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if summary.Valid {
		r.Summary = summary.String
	}
	if failureStage.Valid {
		r.FailureStage = failureStage.String
	}
	if failureMessage.Valid {
		r.FailureMessage = failureMessage.String
	}
	return &r, nil
}
