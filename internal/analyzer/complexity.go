package analyzer

import (
	"strings"

	"github.com/kestrelworks/resolv/internal/scoring"
	"github.com/kestrelworks/resolv/pkg/models"
)

// technicalTerms is the fixed vocabulary feeding the technical-term
// complexity factor.
var technicalTerms = map[string]bool{
	"api": true, "async": true, "authentication": true, "backend": true,
	"cache": true, "concurrency": true, "container": true, "database": true,
	"deadlock": true, "dependency": true, "deployment": true, "encryption": true,
	"endpoint": true, "index": true, "kernel": true, "latency": true,
	"memory": true, "migration": true, "protocol": true, "queue": true,
	"race": true, "replication": true, "schema": true, "serialization": true,
	"server": true, "socket": true, "thread": true, "timeout": true,
	"transaction": true, "websocket": true,
}

// complexityFactors extracts the raw complexity signals from one task.
func complexityFactors(task *models.Task, tokens []string, entities models.Entities) scoring.ComplexityFactors {
	technical := 0
	for _, tok := range tokens {
		if technicalTerms[tok] {
			technical++
		}
	}

	words := len(strings.Fields(task.Title)) + len(strings.Fields(task.Body))

	return scoring.ComplexityFactors{
		TextLength:      words / 100,
		TechnicalTerms:  technical,
		CodeBlocks:      strings.Count(task.Body, "```") / 2,
		StackTraceLines: countStackTraceLines(task.Body),
		Labels:          len(task.Labels),
		CrossReferences: len(entities.References),
	}
}
