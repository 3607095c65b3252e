package p4cli

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codecollab/reviewd/internal/scm"
)

// fakeP4 writes an executable shell script standing in for the p4 binary.
func fakeP4(t *testing.T, script string) *Client {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "p4")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	c := New("localhost:1666", "reviewd", zap.NewNop().Sugar())
	c.Binary = path
	return c
}

func TestClient_FixesForChange(t *testing.T) {
	ctx := context.Background()

	t.Run("parses fixed jobs", func(t *testing.T) {
		c := fakeP4(t, `cat <<EOF
job000001 fixed by change 9001 on 2026/08/30 by alice@ws 'fix the parser'
job000002 fixed by change 9001 on 2026/08/30 by alice@ws 'fix the lexer'
EOF`)

		jobs, err := c.FixesForChange(ctx, "9001")
		require.NoError(t, err)
		assert.Equal(t, []string{"job000001", "job000002"}, jobs)
	})

	t.Run("no fixes yields no jobs", func(t *testing.T) {
		c := fakeP4(t, "exit 0")

		jobs, err := c.FixesForChange(ctx, "9001")
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("command failure is a command error", func(t *testing.T) {
		c := fakeP4(t, `echo "Change 9001 unknown." >&2
exit 1`)

		_, err := c.FixesForChange(ctx, "9001")
		var cmdErr *scm.CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Contains(t, cmdErr.Message, "Change 9001 unknown.")
	})
}

func TestClient_Commit(t *testing.T) {
	ctx := context.Background()

	t.Run("successful submit", func(t *testing.T) {
		c := fakeP4(t, "exit 0")

		err := c.Commit(ctx, scm.CommitSpec{
			ChangeID:    "9001",
			Description: "fix the parser",
			Jobs:        []string{"job000001"},
			FixStatus:   "closed",
		})
		assert.NoError(t, err)
	})

	t.Run("conflicting submit is a conflict error", func(t *testing.T) {
		c := fakeP4(t, `echo "out of date files must be resolved or reverted" >&2
exit 1`)

		err := c.Commit(ctx, scm.CommitSpec{ChangeID: "9001"})
		var conflictErr *scm.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "9001", conflictErr.ChangeID)
	})

	t.Run("bad job is a command error", func(t *testing.T) {
		c := fakeP4(t, `echo "Job 'job000099' doesn't exist." >&2
exit 1`)

		err := c.Commit(ctx, scm.CommitSpec{ChangeID: "9001", Jobs: []string{"job000099"}})
		var cmdErr *scm.CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Contains(t, cmdErr.Message, "Job 'job000099' doesn't exist.")
	})
}

func TestClient_Cleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("revert", func(t *testing.T) {
		c := fakeP4(t, "exit 0")
		assert.NoError(t, c.Cleanup(ctx, scm.CleanupSpec{ChangeID: "9001"}))
	})

	t.Run("reopen failure surfaces", func(t *testing.T) {
		c := fakeP4(t, "exit 1")

		err := c.Cleanup(ctx, scm.CleanupSpec{ChangeID: "9001", Reopen: true})
		var cmdErr *scm.CommandError
		require.ErrorAs(t, err, &cmdErr)
	})
}

func TestIsConflict(t *testing.T) {
	assert.True(t, isConflict("Merges still pending -- use 'resolve' to merge files."))
	assert.False(t, isConflict("no files to submit"))
}
