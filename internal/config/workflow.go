package config

import "strings"

// WorkflowConfig holds workflow enforcement configuration.
type WorkflowConfig struct {
	// Enabled toggles workflow rule enforcement globally.
	Enabled bool
	// ExcludedUsers lists user ids exempt from workflow enforcement.
	ExcludedUsers []string
}

// LoadWorkflowConfigFromEnv loads workflow configuration from environment variables.
func LoadWorkflowConfigFromEnv() WorkflowConfig {
	return WorkflowConfig{
		Enabled:       GetEnvBool("WORKFLOW_ENABLED", true),
		ExcludedUsers: splitList(GetEnv("WORKFLOW_EXCLUDED_USERS", "")),
	}
}

// splitList parses a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
