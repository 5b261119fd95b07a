package knowledge

// Migrate applies all pending schema migrations.
func (s *Store) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Patterns},
		{2, migrationV2Knowledge},
		{3, migrationV3Sessions},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return err
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

// Migration SQL statements
const migrationV1Patterns = `
CREATE TABLE IF NOT EXISTS patterns (
	id TEXT PRIMARY KEY,
	domain TEXT NOT NULL,
	tier TEXT NOT NULL,
	key_terms TEXT,
	category TEXT NOT NULL,
	approach TEXT NOT NULL,
	success_rate REAL NOT NULL DEFAULT 0.0,
	uses INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_patterns_domain ON patterns(domain);
CREATE INDEX IF NOT EXISTS idx_patterns_category ON patterns(category);
`

const migrationV2Knowledge = `
CREATE TABLE IF NOT EXISTS knowledge (
	id TEXT PRIMARY KEY,
	domain TEXT NOT NULL,
	approach TEXT NOT NULL,
	effectiveness REAL NOT NULL DEFAULT 0.0,
	detail TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_knowledge_domain ON knowledge(domain);
`

const migrationV3Sessions = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	state TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	quality_score REAL NOT NULL DEFAULT 0.0,
	workers_spawned INTEGER NOT NULL DEFAULT 0,
	summary TEXT,
	failure_stage TEXT,
	failure_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_state ON sessions(state);
CREATE INDEX IF NOT EXISTS idx_sessions_task_id ON sessions(task_id);
`
