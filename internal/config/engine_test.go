package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEngineConfigFromEnv_DefaultValues(t *testing.T) {
	restore := setupAndRestoreEnv(t, map[string]string{})
	defer restore()

	cfg := LoadEngineConfigFromEnv()
	assert.False(t, cfg.DisableCommit)
	assert.False(t, cfg.DisableSelfApprove)
	assert.False(t, cfg.BlockOnOpenTasks)
	assert.Equal(t, ModeratorModeAny, cfg.ModeratorMode)
	assert.Equal(t, 1800, cfg.CommitTimeoutSeconds)
	assert.True(t, cfg.CommitCreditAuthor)
	assert.False(t, cfg.CleanupDefault)
	assert.False(t, cfg.CleanupReopen)
}

func TestLoadEngineConfigFromEnv_CustomValues(t *testing.T) {
	restore := setupAndRestoreEnv(t, map[string]string{
		"ENGINE_DISABLE_COMMIT":         "true",
		"ENGINE_DISABLE_SELF_APPROVE":   "true",
		"ENGINE_BLOCK_ON_OPEN_TASKS":    "true",
		"ENGINE_MODERATOR_MODE":         "each",
		"ENGINE_COMMIT_TIMEOUT_SECONDS": "60",
		"ENGINE_COMMIT_CREDIT_AUTHOR":   "false",
		"ENGINE_CLEANUP_DEFAULT":        "true",
		"ENGINE_CLEANUP_REOPEN":         "true",
	})
	defer restore()

	cfg := LoadEngineConfigFromEnv()
	assert.True(t, cfg.DisableCommit)
	assert.True(t, cfg.DisableSelfApprove)
	assert.True(t, cfg.BlockOnOpenTasks)
	assert.Equal(t, ModeratorModeEach, cfg.ModeratorMode)
	assert.Equal(t, 60, cfg.CommitTimeoutSeconds)
	assert.False(t, cfg.CommitCreditAuthor)
	assert.True(t, cfg.CleanupDefault)
	assert.True(t, cfg.CleanupReopen)
}

func TestEngineConfig_Validate(t *testing.T) {
	t.Run("valid modes", func(t *testing.T) {
		for _, mode := range []string{ModeratorModeAny, ModeratorModeEach} {
			cfg := EngineConfig{ModeratorMode: mode, CommitTimeoutSeconds: 1800}
			assert.NoError(t, cfg.Validate(), "mode %s should be valid", mode)
		}
	})

	t.Run("invalid mode", func(t *testing.T) {
		cfg := EngineConfig{ModeratorMode: "sometimes", CommitTimeoutSeconds: 1800}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ENGINE_MODERATOR_MODE")
	})

	t.Run("non-positive commit timeout", func(t *testing.T) {
		cfg := EngineConfig{ModeratorMode: ModeratorModeAny, CommitTimeoutSeconds: 0}
		assert.Error(t, cfg.Validate())
	})
}

func TestEngineConfig_CommitTimeout(t *testing.T) {
	cfg := EngineConfig{CommitTimeoutSeconds: 90}
	assert.Equal(t, 90*time.Second, cfg.CommitTimeout())
}

func TestLoadWorkflowConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		restore := setupAndRestoreEnv(t, map[string]string{})
		defer restore()

		cfg := LoadWorkflowConfigFromEnv()
		assert.True(t, cfg.Enabled)
		assert.Empty(t, cfg.ExcludedUsers)
	})

	t.Run("excluded users are trimmed", func(t *testing.T) {
		restore := setupAndRestoreEnv(t, map[string]string{
			"WORKFLOW_ENABLED":        "false",
			"WORKFLOW_EXCLUDED_USERS": "builder, deploy-bot ,,ci",
		})
		defer restore()

		cfg := LoadWorkflowConfigFromEnv()
		assert.False(t, cfg.Enabled)
		assert.Equal(t, []string{"builder", "deploy-bot", "ci"}, cfg.ExcludedUsers)
	})
}
