package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WiseOwlEnglish/testrun-service/internal/services"
	"github.com/WiseOwlEnglish/testrun-service/internal/utils"
	"github.com/WiseOwlEnglish/testrun-service/internal/validator"
)

type TestRunHandler struct {
	BaseHandler
	testRunService services.TestRunService
	validator      *validator.Validator
}

func NewTestRunHandler(
	testRunService services.TestRunService,
	v *validator.Validator,
	logger utils.Logger,
) *TestRunHandler {
	return &TestRunHandler{
		BaseHandler:    NewBaseHandler(logger),
		testRunService: testRunService,
		validator:      v,
	}
}

// StartAttempt opens a test session for the caller
// @Summary Start attempt
// @Description Starts (or resumes) a test attempt for the authenticated learner
// @Tags attempts
// @Accept json
// @Produce json
// @Param request body services.StartAttemptRequest true "Test to attempt"
// @Success 201 {object} services.AttemptStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/start [post]
func (h *TestRunHandler) StartAttempt(c *gin.Context) {
	learnerID, ok := RequireUserID(c)
	if !ok {
		return
	}

	var req services.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting attempt", "test_id", req.TestID)

	state, err := h.testRunService.Start(c.Request.Context(), &req, learnerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, state)
}

// ResumeAttempt rebuilds a session after a reload or restart
// @Summary Resume attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} services.AttemptStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/resume [post]
func (h *TestRunHandler) ResumeAttempt(c *gin.Context) {
	learnerID, ok := RequireUserID(c)
	if !ok {
		return
	}
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	state, err := h.testRunService.Resume(c.Request.Context(), attemptID, learnerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetAttempt returns the current session state and rendered question
// @Summary Get attempt state
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} services.AttemptStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *TestRunHandler) GetAttempt(c *gin.Context) {
	learnerID, ok := RequireUserID(c)
	if !ok {
		return
	}
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	state, err := h.testRunService.View(c.Request.Context(), attemptID, learnerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// Navigate moves the question pointer
// @Summary Navigate
// @Description Moves to the next, previous, or a specific question
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param request body services.NavigateRequest true "Navigation action"
// @Success 200 {object} services.AttemptStateResponse
// @Failure 400 {object} ErrorResponse
// @Router /attempts/{id}/navigate [post]
func (h *TestRunHandler) Navigate(c *gin.Context) {
	learnerID, ok := RequireUserID(c)
	if !ok {
		return
	}
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	var req services.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	state, err := h.testRunService.Navigate(c.Request.Context(), attemptID, learnerID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// Interact applies one answer gesture to the current question
// @Summary Interact
// @Description Applies a selection, text edit, ordering, or pairing gesture
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param request body services.InteractRequest true "Gesture"
// @Success 200 {object} services.AttemptStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/interact [post]
func (h *TestRunHandler) Interact(c *gin.Context) {
	learnerID, ok := RequireUserID(c)
	if !ok {
		return
	}
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	var req services.InteractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	state, err := h.testRunService.Interact(c.Request.Context(), attemptID, learnerID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// SubmitAttempt submits the attempt for grading
// @Summary Submit attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.Verdict
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/submit [post]
func (h *TestRunHandler) SubmitAttempt(c *gin.Context) {
	learnerID, ok := RequireUserID(c)
	if !ok {
		return
	}
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	h.LogRequest(c, "Submitting attempt", "attempt_id", attemptID)

	verdict, err := h.testRunService.Submit(c.Request.Context(), attemptID, learnerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// ReviewAttempt replays a graded attempt read-only
// @Summary Review attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} services.ReviewResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/review [get]
func (h *TestRunHandler) ReviewAttempt(c *gin.Context) {
	learnerID, ok := RequireUserID(c)
	if !ok {
		return
	}
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	review, err := h.testRunService.Review(c.Request.Context(), attemptID, learnerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// AbandonAttempt drops an in-progress attempt without grading
// @Summary Abandon attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/abandon [post]
func (h *TestRunHandler) AbandonAttempt(c *gin.Context) {
	learnerID, ok := RequireUserID(c)
	if !ok {
		return
	}
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}

	if err := h.testRunService.Abandon(c.Request.Context(), attemptID, learnerID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Attempt abandoned"})
}

func (h *TestRunHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrAttemptAlreadySubmitted),
		errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrTestNotActive),
		errors.Is(err, services.ErrTestHasNoQuestions),
		errors.Is(err, services.ErrAttemptNotSubmitted),
		errors.Is(err, services.ErrAttemptSessionGone):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrBadRequest), services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
