// Package handler provides HTTP handlers for review endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	reviewModel "github.com/codecollab/reviewd/internal/review/model"
	"github.com/codecollab/reviewd/internal/review/service"
	"github.com/codecollab/reviewd/internal/scm"
)

// Handler handles HTTP requests for review endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new review handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// transitionRequest wraps the transition payload with the acting user.
type transitionRequest struct {
	UserID string `json:"user_id" binding:"required"`
	reviewModel.TransitionRequest
}

// validateReviewersRequest wraps the reviewer set with the acting user.
type validateReviewersRequest struct {
	UserID string `json:"user_id"`
	reviewModel.ValidateReviewersRequest
}

// GetReview handles GET /reviews/:id request.
// @Summary Fetch a review by id
// @Tags Reviews
// @Produce json
// @Param id path string true "Review id"
// @Success 200 {object} map[string]reviewModel.Review "Response wrapped in review object"
// @Failure 404 {object} ErrorResponse "Review not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /reviews/{id} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetReview(c *gin.Context) {
	review, err := h.service.GetReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// GetTransitions handles GET /reviews/:id/transitions request.
// @Summary List the transitions currently allowed for a user
// @Tags Reviews
// @Produce json
// @Param id path string true "Review id"
// @Param user query string true "Acting user id"
// @Success 200 {object} reviewModel.TransitionsResponse
// @Failure 400 {object} ErrorResponse "Missing or invalid user"
// @Failure 404 {object} ErrorResponse "Review not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /reviews/{id}/transitions [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetTransitions(c *gin.Context) {
	userID := c.Query("user")
	if userID == "" {
		errorResponse(c, "INVALID_REQUEST", "user query parameter is required", http.StatusBadRequest)
		return
	}

	var opts reviewModel.TransitionOptions
	if extra := c.QueryArray("assume_up_vote"); len(extra) > 0 {
		opts.ExtraUpVotes = extra
	}

	set, err := h.service.GetAllowedTransitions(c.Request.Context(), c.Param("id"), userID, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := reviewModel.TransitionsResponse{Disallowed: set.Disallowed()}
	if !set.Disallowed() {
		resp.Transitions = set.States()
	}
	c.JSON(http.StatusOK, resp)
}

// Transition handles POST /reviews/:id/transition request.
// @Summary Transition a review to a new state
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review id"
// @Param request body transitionRequest true "Request"
// @Success 200 {object} map[string]reviewModel.Review "Response wrapped in review object"
// @Failure 400 {object} ErrorResponse "Bad request (INVALID_REQUEST, UNKNOWN_STATE, COMMAND_FAILED)"
// @Failure 403 {object} ErrorResponse "Transitions disallowed for this user"
// @Failure 404 {object} ErrorResponse "Review not found"
// @Failure 409 {object} ErrorResponse "Transition not allowed or commit conflict"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /reviews/{id}/transition [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	review, err := h.service.Transition(c.Request.Context(), c.Param("id"), req.UserID, req.TransitionRequest)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// ValidateReviewers handles POST /reviews/:id/reviewers/validate request.
// @Summary Validate a proposed reviewer set against retention policy
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review id"
// @Param request body validateReviewersRequest true "Request"
// @Success 200 {object} reviewModel.ValidateReviewersResponse
// @Failure 400 {object} ErrorResponse "Bad request (INVALID_REQUEST)"
// @Failure 404 {object} ErrorResponse "Review not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /reviews/{id}/reviewers/validate [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ValidateReviewers(c *gin.Context) {
	var req validateReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ValidateReviewers(c.Request.Context(), c.Param("id"), req.Reviewers)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleError maps service errors to HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	var conflictErr *scm.ConflictError
	var commandErr *scm.CommandError

	switch {
	case errors.Is(err, reviewModel.ErrReviewNotFound):
		notFoundResponse(c, "review not found")
	case errors.Is(err, reviewModel.ErrInvalidReviewID):
		errorResponse(c, "INVALID_REQUEST", "review id is required", http.StatusBadRequest)
	case errors.Is(err, reviewModel.ErrInvalidUserID):
		errorResponse(c, "INVALID_REQUEST", "user id is required", http.StatusBadRequest)
	case errors.Is(err, reviewModel.ErrUnknownState):
		errorResponse(c, "UNKNOWN_STATE", "unknown review state", http.StatusBadRequest)
	case errors.Is(err, reviewModel.ErrTransitionsDisallowed):
		errorResponse(c, "TRANSITIONS_DISALLOWED", "user may not transition this review", http.StatusForbidden)
	case errors.Is(err, reviewModel.ErrTransitionNotAllowed):
		errorResponse(c, "TRANSITION_NOT_ALLOWED", "transition is not allowed from the current state", http.StatusConflict)
	case errors.As(err, &conflictErr):
		errorResponse(c, "COMMIT_CONFLICT", "change could not be committed due to conflicting work", http.StatusConflict)
	case errors.As(err, &commandErr):
		errorResponse(c, "COMMAND_FAILED", commandErr.Message, http.StatusBadRequest)
	default:
		h.logger.Errorw("review handler error", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	}
}
