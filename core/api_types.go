package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration unmarshals from either a JSON number (nanoseconds) or a
// time.ParseDuration string like "30s".
type Duration time.Duration

func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration type %T", v)
	}
}

// RegisterAgentRequest is the body for POST /api/v1/agents.
type RegisterAgentRequest struct {
	AgentID           string   `json:"agent_id,omitempty"` // generated when empty
	Name              string   `json:"name"`
	Role              string   `json:"role,omitempty"`
	PrimaryEndpoint   string   `json:"primary_endpoint"`
	PrimaryCredential string   `json:"primary_credential,omitempty"`
	BackupEndpoint    string   `json:"backup_endpoint,omitempty"`
	BackupCredential  string   `json:"backup_credential,omitempty"`
	Weight            float64  `json:"weight,omitempty"`
	Timeout           Duration `json:"timeout,omitempty"`
}

// RegisterAgentResponse confirms a registration.
type RegisterAgentResponse struct {
	AgentID string `json:"agent_id"`
}

// ConsensusPolicy is the wire form of ConsensusConfig.
type ConsensusPolicy struct {
	Strategy  ConsensusStrategy `json:"strategy,omitempty"`
	Threshold float64           `json:"threshold,omitempty"`
	Timeout   Duration          `json:"timeout,omitempty"`
}

// CreateTaskRequest is the body for POST /api/v1/tasks.
type CreateTaskRequest struct {
	Description string           `json:"description"`
	Context     map[string]any   `json:"context,omitempty"`
	AgentIDs    []string         `json:"agent_ids"`
	Consensus   *ConsensusPolicy `json:"consensus,omitempty"`
}

// CreateTaskResponse confirms task creation.
type CreateTaskResponse struct {
	TaskID string     `json:"task_id"`
	Status TaskStatus `json:"status"`
}

// TaskStatusResponse is the body for GET /api/v1/tasks/{taskId}.
type TaskStatusResponse struct {
	TaskID string           `json:"task_id"`
	Status TaskStatus       `json:"status"`
	Result *ConsensusResult `json:"result,omitempty"`
}

// HealthResponse is the body for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	AgentCount    int    `json:"agent_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}
