package knowledge

import (
	"database/sql"
	"fmt"

	"github.com/kestrelworks/resolv/pkg/models"
)

// PutRecord inserts a knowledge record or overwrites an existing one by ID.
func (s *Store) PutRecord(r *models.KnowledgeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO knowledge (id, domain, approach, effectiveness, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Domain, r.Approach, r.Effectiveness, r.Detail, formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("put knowledge record: %w", err)
	}
	return nil
}

// GetRecord retrieves a knowledge record by ID. Returns nil, nil when
// not found.
func (s *Store) GetRecord(id string) (*models.KnowledgeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, domain, approach, effectiveness, detail, created_at
		FROM knowledge WHERE id = ?
	`, id)

	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get knowledge record: %w", err)
	}
	return r, nil
}

// RecordsByDomain returns knowledge records for a domain ordered by
// effectiveness descending.
func (s *Store) RecordsByDomain(domain string) ([]*models.KnowledgeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, domain, approach, effectiveness, detail, created_at
		FROM knowledge WHERE domain = ? ORDER BY effectiveness DESC
	`, domain)
	if err != nil {
		return nil, fmt.Errorf("records by domain: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListRecords returns all knowledge records ordered by effectiveness
// descending.
func (s *Store) ListRecords() ([]*models.KnowledgeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, domain, approach, effectiveness, detail, created_at
		FROM knowledge ORDER BY effectiveness DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list knowledge records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]*models.KnowledgeRecord, error) {
	var records []*models.KnowledgeRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan knowledge record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanRecord(sc scanner) (*models.KnowledgeRecord, error) {
	var r models.KnowledgeRecord
	var detail sql.NullString
	var createdAt string
	if err := sc.Scan(&r.ID, &r.Domain, &r.Approach, &r.Effectiveness, &detail, &createdAt); err != nil {
		return nil, err
	}
	if detail.Valid {
		r.Detail = detail.String
	}
	r.CreatedAt, _ = parseTime(createdAt)
	return &r, nil
}
