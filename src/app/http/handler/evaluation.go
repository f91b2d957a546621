package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"hackboard/src/app/http/dto"
	"hackboard/src/app/http/response"
	"hackboard/src/app/middleware"
	"hackboard/src/core/domain"
	"hackboard/src/core/usecase"
)

// EvaluationHandler handles the judge-facing evaluation endpoints and the
// admin lock endpoint.
type EvaluationHandler struct {
	evaluations *usecase.EvaluationService
}

func NewEvaluationHandler(evaluations *usecase.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

func evaluationBody(e *domain.Evaluation) gin.H {
	return gin.H{
		"hackathon_id": e.HackathonID,
		"judge_id":     e.JudgeID,
		"team_id":      e.TeamID,
		"scores":       e.Scores,
		"comments":     e.Comments,
		"status":       e.Status,
		"locked":       e.LockedByAdmin,
		"submitted_at": e.SubmittedAt,
	}
}

// SaveDraft upserts the judge's draft for a team.
// PUT /v1/hackathons/:hackathon_id/evaluations/draft
func (h *EvaluationHandler) SaveDraft(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}
	judgeID, ok := middleware.GetJudgeID(c)
	if !ok {
		response.Unauthorized(c, "judge identity missing", middleware.GetRequestID(c))
		return
	}

	var req dto.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	eval, err := h.evaluations.SaveDraft(c.Request.Context(), hackathonID, judgeID, req.TeamID, req.Scores.Scores(), req.Comments)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, evaluationBody(eval))
}

// Submit finalizes the judge's evaluation for a team.
// POST /v1/hackathons/:hackathon_id/evaluations/submit
func (h *EvaluationHandler) Submit(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}
	judgeID, ok := middleware.GetJudgeID(c)
	if !ok {
		response.Unauthorized(c, "judge identity missing", middleware.GetRequestID(c))
		return
	}

	var req dto.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	eval, err := h.evaluations.SubmitFinal(c.Request.Context(), hackathonID, judgeID, req.TeamID, req.Scores.Scores(), req.Comments)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.Created(c, evaluationBody(eval))
}

// Update edits a submitted, unlocked evaluation.
// PATCH /v1/hackathons/:hackathon_id/evaluations
func (h *EvaluationHandler) Update(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}
	judgeID, ok := middleware.GetJudgeID(c)
	if !ok {
		response.Unauthorized(c, "judge identity missing", middleware.GetRequestID(c))
		return
	}

	var req dto.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	eval, err := h.evaluations.UpdateSubmitted(c.Request.Context(), hackathonID, judgeID, req.TeamID, req.Scores.Scores(), req.Comments)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, evaluationBody(eval))
}

// Get returns the judge's own evaluation for a team; status NONE when no
// record exists yet.
// GET /v1/hackathons/:hackathon_id/teams/:team_id/evaluation
func (h *EvaluationHandler) Get(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}
	judgeID, ok := middleware.GetJudgeID(c)
	if !ok {
		response.Unauthorized(c, "judge identity missing", middleware.GetRequestID(c))
		return
	}
	teamID, err := strconv.ParseInt(c.Param("team_id"), 10, 64)
	if err != nil || teamID <= 0 {
		response.BadRequest(c, "invalid team id", middleware.GetRequestID(c))
		return
	}

	eval, err := h.evaluations.Get(c.Request.Context(), hackathonID, judgeID, teamID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, evaluationBody(eval))
}

// SetLock flips the admin lock on a submitted evaluation.
// POST /v1/hackathons/:hackathon_id/evaluations/lock
func (h *EvaluationHandler) SetLock(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}

	var req dto.LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	if err := h.evaluations.SetLock(c.Request.Context(), hackathonID, req.JudgeID, req.TeamID, *req.Locked); err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{
		"judge_id": req.JudgeID,
		"team_id":  req.TeamID,
		"locked":   *req.Locked,
	})
}
