package knowledge

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kestrelworks/resolv/pkg/models"
)

// PutPattern inserts a pattern or overwrites an existing one by ID.
// The write is a single statement and therefore atomic at record level.
func (s *Store) PutPattern(p *models.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyTerms, _ := json.Marshal(p.KeyTerms)
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO patterns (id, domain, tier, key_terms, category, approach, success_rate, uses, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Domain, string(p.Tier), string(keyTerms), p.Category, p.Approach, p.SuccessRate, p.Uses, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("put pattern: %w", err)
	}
	return nil
}

// GetPattern retrieves a pattern by ID. Returns nil, nil when not found.
func (s *Store) GetPattern(id string) (*models.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, domain, tier, key_terms, category, approach, success_rate, uses, created_at
		FROM patterns WHERE id = ?
	`, id)

	p, err := scanPattern(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pattern: %w", err)
	}
	return p, nil
}

// ListPatterns returns all stored patterns ordered by success rate
// descending, then creation time.
func (s *Store) ListPatterns() ([]*models.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, domain, tier, key_terms, category, approach, success_rate, uses, created_at
		FROM patterns ORDER BY success_rate DESC, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*models.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// TopPatterns returns up to limit patterns with the highest success
// rates, preferring patterns with more uses on ties.
func (s *Store) TopPatterns(limit int) ([]*models.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, domain, tier, key_terms, category, approach, success_rate, uses, created_at
		FROM patterns ORDER BY success_rate DESC, uses DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*models.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// RecordPatternOutcome folds one session outcome into a pattern's
// running success rate. The update runs in one statement so readers
// never observe a half-applied rate.
func (s *Store) RecordPatternOutcome(id string, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hit := 0
	if success {
		hit = 1
	}
	_, err := s.db.Exec(`
		UPDATE patterns
		SET success_rate = (success_rate * uses + ?) / (uses + 1),
		    uses = uses + 1
		WHERE id = ?
	`, hit, id)
	if err != nil {
		return fmt.Errorf("record pattern outcome: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanPattern(sc scanner) (*models.Pattern, error) {
	var p models.Pattern
	var tier, createdAt string
	var keyTerms sql.NullString
	if err := sc.Scan(&p.ID, &p.Domain, &tier, &keyTerms, &p.Category, &p.Approach, &p.SuccessRate, &p.Uses, &createdAt); err != nil {
		return nil, err
	}
	p.Tier = models.ComplexityTier(tier)
	if keyTerms.Valid {
		json.Unmarshal([]byte(keyTerms.String), &p.KeyTerms)
	}
	p.CreatedAt, _ = parseTime(createdAt)
	return &p, nil
}
