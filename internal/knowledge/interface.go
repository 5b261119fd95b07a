package knowledge

import (
	"time"

	"github.com/kestrelworks/resolv/pkg/models"
)

// PatternReader exposes the read side of the pattern store. The analyzer
// depends only on this interface.
type PatternReader interface {
	ListPatterns() ([]*models.Pattern, error)
	GetPattern(id string) (*models.Pattern, error)
}

// PatternWriter exposes the write side of the pattern store. Only the
// learning integrator writes patterns.
type PatternWriter interface {
	PutPattern(p *models.Pattern) error
	RecordPatternOutcome(id string, success bool) error
}

// RecordStore handles knowledge-record persistence.
type RecordStore interface {
	PutRecord(r *models.KnowledgeRecord) error
	RecordsByDomain(domain string) ([]*models.KnowledgeRecord, error)
}

// Ledger handles the append-only terminal session ledger.
type Ledger interface {
	AppendLedger(r *LedgerRecord) error
	GetLedger(sessionID string) (*LedgerRecord, error)
	ListLedger(state *models.SessionState, limit int) ([]*LedgerRecord, error)
	PurgeLedger(olderThan time.Duration) (int64, error)
}

// KnowledgeStore is the full store contract the orchestrator wires into
// the pipeline context. It composes focused sub-interfaces so stages can
// depend on only what they use.
type KnowledgeStore interface {
	PatternReader
	PatternWriter
	RecordStore
	Ledger
	Close() error
}

// Verify Store implements KnowledgeStore at compile time.
var _ KnowledgeStore = (*Store)(nil)
