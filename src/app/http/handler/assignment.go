package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"hackboard/src/app/http/dto"
	"hackboard/src/app/http/response"
	"hackboard/src/app/middleware"
	"hackboard/src/core/ports"
	"hackboard/src/core/usecase"
)

// AssignmentHandler handles the admin assignment-matrix endpoints.
type AssignmentHandler struct {
	assignments *usecase.AssignmentService
}

func NewAssignmentHandler(assignments *usecase.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Assign creates assignments in bulk.
// POST /v1/hackathons/:hackathon_id/assignments
func (h *AssignmentHandler) Assign(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	pairs := make([]ports.AssignmentPair, len(req.Pairs))
	for i, p := range req.Pairs {
		pairs[i] = ports.AssignmentPair{JudgeID: p.JudgeID, TeamID: p.TeamID}
	}

	created, err := h.assignments.Assign(c.Request.Context(), hackathonID, pairs)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	out := make([]gin.H, len(created))
	for i, a := range created {
		out[i] = gin.H{
			"assignment_id": a.ID,
			"judge_id":      a.JudgeID,
			"team_id":       a.TeamID,
			"created_at":    a.CreatedAt,
		}
	}
	response.Created(c, gin.H{"assignments": out})
}

// Reassign moves a team to another judge.
// POST /v1/hackathons/:hackathon_id/assignments/reassign
func (h *AssignmentHandler) Reassign(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}

	var req dto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	a, err := h.assignments.Reassign(c.Request.Context(), hackathonID, req.TeamID, req.FromJudgeID, req.ToJudgeID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.OK(c, gin.H{
		"assignment_id": a.ID,
		"judge_id":      a.JudgeID,
		"team_id":       a.TeamID,
		"created_at":    a.CreatedAt,
	})
}

// Matrix returns the per-judge assignment view.
// GET /v1/hackathons/:hackathon_id/assignments/matrix
func (h *AssignmentHandler) Matrix(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}

	matrix, err := h.assignments.Matrix(c.Request.Context(), hackathonID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	judges := make([]gin.H, len(matrix.Judges))
	for i, j := range matrix.Judges {
		teamIDs := j.TeamIDs
		if teamIDs == nil {
			teamIDs = []int64{}
		}
		judges[i] = gin.H{
			"judge_id":     j.Judge.ID,
			"display_name": j.Judge.DisplayName,
			"team_ids":     teamIDs,
			"total_load":   j.TotalLoad,
		}
	}
	response.OK(c, gin.H{
		"hackathon_id": matrix.HackathonID,
		"judges":       judges,
	})
}

// RemoveTeamAssignments clears every assignment of a team.
// DELETE /v1/hackathons/:hackathon_id/teams/:team_id/assignments
func (h *AssignmentHandler) RemoveTeamAssignments(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}
	teamID, err := strconv.ParseInt(c.Param("team_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid team id", middleware.GetRequestID(c))
		return
	}

	deleted, err := h.assignments.RemoveTeam(c.Request.Context(), hackathonID, teamID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"team_id": teamID, "deleted": deleted})
}

// RemoveJudgeAssignments clears every assignment of a judge.
// DELETE /v1/hackathons/:hackathon_id/judges/:judge_id/assignments
func (h *AssignmentHandler) RemoveJudgeAssignments(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}
	judgeID, err := strconv.ParseInt(c.Param("judge_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid judge id", middleware.GetRequestID(c))
		return
	}

	deleted, err := h.assignments.RemoveJudge(c.Request.Context(), hackathonID, judgeID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"judge_id": judgeID, "deleted": deleted})
}

// Rebalance redistributes movable assignments evenly.
// POST /v1/hackathons/:hackathon_id/assignments/rebalance
func (h *AssignmentHandler) Rebalance(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}

	summary, err := h.assignments.Rebalance(c.Request.Context(), hackathonID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, summary)
}
