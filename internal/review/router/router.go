// Package router provides review module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	commentRepository "github.com/codecollab/reviewd/internal/comment/repository"
	"github.com/codecollab/reviewd/internal/config"
	"github.com/codecollab/reviewd/internal/lock"
	projectRepository "github.com/codecollab/reviewd/internal/project/repository"
	"github.com/codecollab/reviewd/internal/review/engine"
	"github.com/codecollab/reviewd/internal/review/handler"
	reviewModel "github.com/codecollab/reviewd/internal/review/model"
	reviewRepository "github.com/codecollab/reviewd/internal/review/repository"
	"github.com/codecollab/reviewd/internal/review/service"
	"github.com/codecollab/reviewd/internal/scm"
	userRepository "github.com/codecollab/reviewd/internal/user/repository"
	"github.com/codecollab/reviewd/internal/workflow"
)

// RegisterRoutes registers review module routes.
func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	locks lock.Provider,
	vcs scm.SCM,
	comments service.CommentQueue,
	logger *zap.SugaredLogger,
) {
	repo := reviewRepository.New(db)
	users := userRepository.New(db)
	projects := projectRepository.New(db)
	tasks := commentRepository.New(db)
	wf := workflow.New(cfg.Workflow, logger)

	calculator := engine.NewCalculator(
		reviewModel.DefaultTransitionTable(),
		cfg.Engine,
		projects,
		users,
		wf,
		tasks,
		logger,
	)
	validator := engine.NewValidator(users, projects, wf)
	coordinator := engine.NewCoordinator(cfg.Engine, locks, vcs, repo, logger)

	svc := service.New(repo, calculator, validator, coordinator, comments, logger)
	h := handler.New(svc, logger)

	r.GET("/reviews/:id", h.GetReview)
	r.GET("/reviews/:id/transitions", h.GetTransitions)
	r.POST("/reviews/:id/transition", h.Transition)
	r.POST("/reviews/:id/reviewers/validate", h.ValidateReviewers)
}
