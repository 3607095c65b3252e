package config

import (
	"fmt"
	"time"
)

// Moderator approval modes: "any" accepts a single moderator's approval for
// commit, "each" requires at least one approval from every moderated
// branch's moderators.
const (
	ModeratorModeAny  = "any"
	ModeratorModeEach = "each"
)

// EngineConfig holds review transition engine policy configuration.
type EngineConfig struct {
	// DisableCommit removes the approve-and-commit transition globally.
	DisableCommit bool
	// DisableSelfApprove prevents authors from approving their own reviews.
	DisableSelfApprove bool
	// BlockOnOpenTasks withholds approval transitions while the review has
	// open task comments.
	BlockOnOpenTasks bool
	// ModeratorMode is the moderator approval mode (any, each).
	ModeratorMode string
	// CommitTimeoutSeconds bounds a single commit attempt.
	CommitTimeoutSeconds int
	// CommitCreditAuthor commits on behalf of the review author.
	CommitCreditAuthor bool
	// CleanupDefault requests post-commit cleanup when the transition does
	// not say either way.
	CleanupDefault bool
	// CleanupReopen reopens leftover files into the default pending set
	// during cleanup instead of discarding them.
	CleanupReopen bool
}

// LoadEngineConfigFromEnv loads engine configuration from environment variables.
func LoadEngineConfigFromEnv() EngineConfig {
	return EngineConfig{
		DisableCommit:        GetEnvBool("ENGINE_DISABLE_COMMIT", false),
		DisableSelfApprove:   GetEnvBool("ENGINE_DISABLE_SELF_APPROVE", false),
		BlockOnOpenTasks:     GetEnvBool("ENGINE_BLOCK_ON_OPEN_TASKS", false),
		ModeratorMode:        GetEnv("ENGINE_MODERATOR_MODE", ModeratorModeAny),
		CommitTimeoutSeconds: GetEnvInt("ENGINE_COMMIT_TIMEOUT_SECONDS", 1800),
		CommitCreditAuthor:   GetEnvBool("ENGINE_COMMIT_CREDIT_AUTHOR", true),
		CleanupDefault:       GetEnvBool("ENGINE_CLEANUP_DEFAULT", false),
		CleanupReopen:        GetEnvBool("ENGINE_CLEANUP_REOPEN", false),
	}
}

// Validate validates engine configuration.
func (c EngineConfig) Validate() error {
	if c.ModeratorMode != ModeratorModeAny && c.ModeratorMode != ModeratorModeEach {
		return fmt.Errorf("invalid ENGINE_MODERATOR_MODE: %s (must be: any, each)", c.ModeratorMode)
	}
	if c.CommitTimeoutSeconds <= 0 {
		return fmt.Errorf("CommitTimeoutSeconds must be greater than 0")
	}
	return nil
}

// CommitTimeout returns the commit attempt time budget.
func (c EngineConfig) CommitTimeout() time.Duration {
	return time.Duration(c.CommitTimeoutSeconds) * time.Second
}
