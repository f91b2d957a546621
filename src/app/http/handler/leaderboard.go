package handler

import (
	"github.com/gin-gonic/gin"

	"hackboard/src/app/http/dto"
	"hackboard/src/app/http/response"
	"hackboard/src/app/middleware"
	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
	"hackboard/src/core/usecase"
)

// LeaderboardHandler handles the scoring pipeline and leaderboard views.
type LeaderboardHandler struct {
	scoring *usecase.ScoringService
}

func NewLeaderboardHandler(scoring *usecase.ScoringService) *LeaderboardHandler {
	return &LeaderboardHandler{scoring: scoring}
}

// Aggregate recomputes per-team average scores.
// POST /v1/hackathons/:hackathon_id/scores/aggregate
func (h *LeaderboardHandler) Aggregate(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}

	teams, err := h.scoring.Aggregate(c.Request.Context(), hackathonID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"teams_aggregated": teams})
}

// Compute ranks verified teams and persists the leaderboard.
// POST /v1/hackathons/:hackathon_id/leaderboard/compute
func (h *LeaderboardHandler) Compute(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}

	ranked, err := h.scoring.ComputeFinal(c.Request.Context(), hackathonID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	entries := make([]gin.H, len(ranked))
	for i, r := range ranked {
		entries[i] = gin.H{
			"team_id":     r.TeamID,
			"final_score": r.Score,
			"rank":        r.Rank,
		}
	}
	response.OK(c, gin.H{"entries": entries})
}

// Publish toggles leaderboard visibility.
// POST /v1/hackathons/:hackathon_id/leaderboard/publish
func (h *LeaderboardHandler) Publish(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}

	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	count, err := h.scoring.SetPublished(c.Request.Context(), hackathonID, *req.Published)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{
		"published":       *req.Published,
		"entries_updated": count,
	})
}

func leaderboardPage(page *ports.LeaderboardPage) response.Paginated {
	entries := make([]gin.H, len(page.Entries))
	for i, e := range page.Entries {
		entries[i] = gin.H{
			"team_id":     e.TeamID,
			"team_name":   e.TeamName,
			"category":    e.Category,
			"final_score": e.FinalScore,
			"rank":        e.Rank,
			"published":   e.IsPublished,
			"computed_at": e.ComputedAt,
		}
	}
	return response.Paginated{
		Data:       entries,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	}
}

// Internal is the admin leaderboard view: filterable, ignores the publish
// flag.
// GET /v1/hackathons/:hackathon_id/leaderboard
func (h *LeaderboardHandler) Internal(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}
	page, perPage := parsePagination(c)

	result, err := h.scoring.InternalView(c.Request.Context(), hackathonID, c.Query("name"), c.Query("category"), page, perPage)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, leaderboardPage(result))
}

// Public is the unauthenticated view: published entries only, page size
// capped, no name search.
// GET /v1/public/hackathons/:hackathon_id/leaderboard
func (h *LeaderboardHandler) Public(c *gin.Context) {
	hackathonID, ok := parseHackathonID(c)
	if !ok {
		return
	}
	page, perPage := parsePagination(c)
	if perPage > domain.MaxPublicPageSize {
		perPage = domain.MaxPublicPageSize
	}

	result, err := h.scoring.PublicView(c.Request.Context(), hackathonID, page, perPage)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, leaderboardPage(result))
}
