// Package discovery ingests spawn requests produced by the external
// discovery collaborator. Requests arrive as YAML files in a spool
// directory; the engine treats them as ordinary spawn input with no
// validation beyond the normal spawn preconditions.
package discovery

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/taskloom/loom/internal/engine"
	"github.com/taskloom/loom/pkg/models"
)

// SpawnRequest is the wire format discovery writes into the spool.
type SpawnRequest struct {
	// Agent is the ID of the agent the request is attributed to.
	Agent string `yaml:"agent"`
	// Execution is the target execution ID.
	Execution string `yaml:"execution"`
	// Phase is the suggested phase for the task.
	Phase string `yaml:"phase"`
	// Title is the task title.
	Title string `yaml:"title"`
	// Description is the task description.
	Description string `yaml:"description"`
	// Rationale is optional free text.
	Rationale string `yaml:"rationale,omitempty"`
	// BlockedBy lists task IDs that must finish first.
	BlockedBy []string `yaml:"blocked_by,omitempty"`
}

// ParseRequest decodes a spooled YAML request.
func ParseRequest(data []byte) (*SpawnRequest, error) {
	var req SpawnRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse spawn request: %w", err)
	}
	return &req, nil
}

// ToEngineRequest converts the wire format into the engine's request.
func (r *SpawnRequest) ToEngineRequest() engine.SpawnRequest {
	return engine.SpawnRequest{
		Agent:           r.Agent,
		ExecutionID:     r.Execution,
		Phase:           models.Phase(r.Phase),
		Title:           r.Title,
		Description:     r.Description,
		Rationale:       r.Rationale,
		BlockingTaskIDs: r.BlockedBy,
	}
}
