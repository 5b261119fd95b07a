// Package policy defines the fixed thresholds and caps that govern
// pipeline behavior. Centralizing them keeps the control values out of
// the stage implementations and testable in one place.
package policy

import "time"

// Config contains all policy parameters the pipeline consumes.
type Config struct {
	// Coordination policies
	Coordination CoordinationPolicy

	// Assessment policies
	Assessment AssessmentPolicy

	// Terminal publish policies
	Publish PublishPolicy

	// Event stream policies
	Events EventPolicy
}

// CoordinationPolicy controls the swarm's collaboration and consensus
// phases.
type CoordinationPolicy struct {
	// MaxRounds caps the collaboration rounds held per session.
	MaxRounds int

	// MaxRoundParticipants caps the workers drawn into one round.
	MaxRoundParticipants int

	// ConsensusThreshold is the topic confidence above which a
	// consensus topic counts toward convergence. The same bound marks
	// the advisory overall-consensus flag on the result.
	ConsensusThreshold float64
}

// AssessmentPolicy controls quality-assessment output.
type AssessmentPolicy struct {
	// RecommendationThreshold is the dimension score below which an
	// improvement recommendation is generated.
	RecommendationThreshold float64
}

// PublishPolicy controls terminal side effects toward the tracker.
type PublishPolicy struct {
	// ChangeMinScore is the aggregate quality score a completed
	// session must exceed before a change request is opened.
	ChangeMinScore float64

	// ChangeMinCompleteness is the completeness dimension a completed
	// session must exceed before a change request is opened.
	ChangeMinCompleteness float64

	// Timeout bounds the publish call for one terminal session.
	Timeout time.Duration
}

// EventPolicy controls the orchestrator event stream.
type EventPolicy struct {
	// BufferSize is the event channel buffer. Events are dropped,
	// never blocked on, when the buffer is full.
	BufferSize int
}

// Default returns the default policy configuration.
func Default() *Config {
	return &Config{
		Coordination: CoordinationPolicy{
			MaxRounds:            3,
			MaxRoundParticipants: 4,
			ConsensusThreshold:   0.7,
		},
		Assessment: AssessmentPolicy{
			RecommendationThreshold: 0.8,
		},
		Publish: PublishPolicy{
			ChangeMinScore:        0.8,
			ChangeMinCompleteness: 0.9,
			Timeout:               30 * time.Second,
		},
		Events: EventPolicy{
			BufferSize: 100,
		},
	}
}

// Validate checks that policy values are within acceptable ranges,
// resetting out-of-range values to their defaults.
func (c *Config) Validate() error {
	def := Default()
	if c.Coordination.MaxRounds < 1 {
		c.Coordination.MaxRounds = def.Coordination.MaxRounds
	}
	if c.Coordination.MaxRoundParticipants < 1 {
		c.Coordination.MaxRoundParticipants = def.Coordination.MaxRoundParticipants
	}
	if c.Coordination.ConsensusThreshold <= 0 || c.Coordination.ConsensusThreshold >= 1 {
		c.Coordination.ConsensusThreshold = def.Coordination.ConsensusThreshold
	}
	if c.Assessment.RecommendationThreshold <= 0 || c.Assessment.RecommendationThreshold > 1 {
		c.Assessment.RecommendationThreshold = def.Assessment.RecommendationThreshold
	}
	if c.Publish.ChangeMinScore <= 0 || c.Publish.ChangeMinScore >= 1 {
		c.Publish.ChangeMinScore = def.Publish.ChangeMinScore
	}
	if c.Publish.ChangeMinCompleteness <= 0 || c.Publish.ChangeMinCompleteness >= 1 {
		c.Publish.ChangeMinCompleteness = def.Publish.ChangeMinCompleteness
	}
	if c.Publish.Timeout <= 0 {
		c.Publish.Timeout = def.Publish.Timeout
	}
	if c.Events.BufferSize < 1 {
		c.Events.BufferSize = def.Events.BufferSize
	}
	return nil
}
