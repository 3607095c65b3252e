// Package scm defines the version-control collaborator contract used by the
// commit protocol: committing a review's change, querying attached job
// fixes, and post-commit cleanup of pending work.
package scm

import "context"

// CommitSpec describes a commit attempt for a review's change.
type CommitSpec struct {
	// ChangeID identifies the pending change to commit.
	ChangeID string
	// Description is the change description to commit with.
	Description string
	// Jobs lists job ids to attach to the commit.
	Jobs []string
	// FixStatus is the status applied to attached jobs on commit.
	FixStatus string
	// CreditAuthor commits on behalf of the review author rather than the
	// committing user.
	CreditAuthor bool
}

// CleanupSpec describes post-commit cleanup of pending work.
type CleanupSpec struct {
	// ChangeID identifies the change whose pending work is cleaned up.
	ChangeID string
	// Reopen moves leftover files into the default pending set instead of
	// discarding them.
	Reopen bool
}

// SCM is the version-control collaborator consumed by the commit protocol.
type SCM interface {
	// Commit commits the change. Failures are reported as *ConflictError
	// for concurrent-modification rejections, *CommandError for
	// mechanically failed commands, or plain errors otherwise.
	Commit(ctx context.Context, spec CommitSpec) error

	// FixesForChange returns the job ids already attached to the change.
	FixesForChange(ctx context.Context, changeID string) ([]string, error)

	// Cleanup removes pending work left behind after a successful commit.
	Cleanup(ctx context.Context, spec CleanupSpec) error
}
