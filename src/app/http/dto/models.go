package dto

import "hackboard/src/core/domain"

// AssignRequest creates assignments in bulk.
type AssignRequest struct {
	Pairs []AssignPair `json:"pairs" binding:"required,min=1,dive"`
}

// AssignPair is one (judge, team) pair in a bulk assign request.
type AssignPair struct {
	JudgeID int64 `json:"judge_id" binding:"required,gt=0"`
	TeamID  int64 `json:"team_id" binding:"required,gt=0"`
}

// ReassignRequest moves a team from one judge to another.
type ReassignRequest struct {
	TeamID      int64 `json:"team_id" binding:"required,gt=0"`
	FromJudgeID int64 `json:"from_judge_id" binding:"required,gt=0"`
	ToJudgeID   int64 `json:"to_judge_id" binding:"required,gt=0"`
}

// ScoresPayload carries the four criterion scores.
type ScoresPayload struct {
	Innovation   int `json:"innovation" binding:"min=0,max=10"`
	Execution    int `json:"execution" binding:"min=0,max=10"`
	Impact       int `json:"impact" binding:"min=0,max=10"`
	Presentation int `json:"presentation" binding:"min=0,max=10"`
}

// Scores converts the payload into the domain value.
func (p ScoresPayload) Scores() domain.CriterionScores {
	return domain.CriterionScores{
		Innovation:   p.Innovation,
		Execution:    p.Execution,
		Impact:       p.Impact,
		Presentation: p.Presentation,
	}
}

// EvaluationRequest saves a draft or submits/edits an evaluation.
type EvaluationRequest struct {
	TeamID int64 `json:"team_id" binding:"required,gt=0"`
	// No "required" tag on Scores: an all-zero payload is a legal score set.
	Scores   ScoresPayload `json:"scores"`
	Comments *string       `json:"comments"`
}

// LockRequest flips the admin lock on a submitted evaluation.
type LockRequest struct {
	JudgeID int64 `json:"judge_id" binding:"required,gt=0"`
	TeamID  int64 `json:"team_id" binding:"required,gt=0"`
	Locked  *bool `json:"locked" binding:"required"`
}

// PublishRequest toggles leaderboard visibility.
type PublishRequest struct {
	Published *bool `json:"published" binding:"required"`
}
