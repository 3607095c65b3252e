package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appConfig "github.com/codecollab/reviewd/internal/config"
	"github.com/codecollab/reviewd/internal/lock"
	"github.com/codecollab/reviewd/internal/review/model"
	"github.com/codecollab/reviewd/internal/scm"
)

// Coordinator executes an approved commit transition: it serializes commit
// attempts per review behind a named lock, drives the external commit, and
// reverts the review's persisted state when the commit fails. The state
// revert is the only compensation in the transition protocol because the
// commit is the only step with an irreversible external side effect.
type Coordinator struct {
	cfg    appConfig.EngineConfig
	locks  lock.Provider
	vcs    scm.SCM
	store  ReviewStore
	logger *zap.SugaredLogger
}

// NewCoordinator creates a commit coordinator.
func NewCoordinator(
	cfg appConfig.EngineConfig,
	locks lock.Provider,
	vcs scm.SCM,
	store ReviewStore,
	logger *zap.SugaredLogger,
) *Coordinator {
	return &Coordinator{
		cfg:    cfg,
		locks:  locks,
		vcs:    vcs,
		store:  store,
		logger: logger,
	}
}

// Commit runs the locked commit protocol for an already-persisted review.
// On any failure the review's persisted state is reverted to originalState
// and the error is returned with known command errors translated; the lock
// is released on every path.
func (c *Coordinator) Commit(
	ctx context.Context,
	review *model.Review,
	userID string,
	req model.TransitionRequest,
	originalState model.State,
) error {
	// Committing can be slow; raise the time budget to the configured
	// commit timeout. The caller's deadline and cancellation are shed
	// first: once a commit is in flight it runs to completion even if the
	// client disconnects.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.CommitTimeout())
	defer cancel()

	jobs := req.Jobs
	if jobs == nil {
		carried, err := c.vcs.FixesForChange(ctx, review.ChangeID)
		if err != nil {
			return c.fail(ctx, review, originalState, err)
		}
		jobs = carried
	}

	name := lock.ChangeLockName(review.ReviewID)
	if err := c.locks.Acquire(ctx, name); err != nil {
		return c.fail(ctx, review, originalState, err)
	}
	defer c.locks.Release(name)

	c.logger.Infow("committing review change",
		"review_id", review.ReviewID,
		"change_id", review.ChangeID,
		"user_id", userID,
		"jobs", jobs,
	)

	err := c.vcs.Commit(ctx, scm.CommitSpec{
		ChangeID:     review.ChangeID,
		Description:  review.Description,
		Jobs:         jobs,
		FixStatus:    req.FixStatus,
		CreditAuthor: c.cfg.CommitCreditAuthor,
	})
	if err != nil {
		return c.fail(ctx, review, originalState, err)
	}

	if c.cleanupRequested(req) {
		cleanupErr := c.vcs.Cleanup(ctx, scm.CleanupSpec{
			ChangeID: review.ChangeID,
			Reopen:   c.cfg.CleanupReopen,
		})
		if cleanupErr != nil {
			// The commit itself succeeded and cannot be undone; leftover
			// pending work is reported, not compensated.
			c.logger.Errorw("post-commit cleanup failed",
				"review_id", review.ReviewID,
				"change_id", review.ChangeID,
				"error", cleanupErr,
			)
		}
	}

	return nil
}

// cleanupRequested resolves the per-request cleanup flag against the
// configured default.
func (c *Coordinator) cleanupRequested(req model.TransitionRequest) bool {
	if req.Cleanup != nil {
		return *req.Cleanup
	}
	return c.cfg.CleanupDefault
}

// fail reverts the review's persisted state and returns the translated
// error.
func (c *Coordinator) fail(
	ctx context.Context,
	review *model.Review,
	originalState model.State,
	err error,
) error {
	// The commit context may already be expired; the revert still has to
	// land.
	revertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if _, revertErr := c.store.RevertState(revertCtx, review, originalState); revertErr != nil {
		c.logger.Errorw("failed to revert review state after commit failure",
			"review_id", review.ReviewID,
			"original_state", originalState,
			"commit_error", err,
			"revert_error", revertErr,
		)
		return fmt.Errorf("reverting state after commit failure: %w", revertErr)
	}

	c.logger.Warnw("commit failed, review state reverted",
		"review_id", review.ReviewID,
		"original_state", originalState,
		"error", err,
	)
	return scm.Translate(err)
}
