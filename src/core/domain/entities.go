package domain

import "time"

// VerificationStatus represents a team's registration review state.
// Only verified teams are eligible for ranking.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// EvaluationStatus represents lifecycle of a judge's evaluation.
// The "none" state is virtual: no row exists yet.
type EvaluationStatus string

const (
	EvaluationNone      EvaluationStatus = "NONE"
	EvaluationDraft     EvaluationStatus = "DRAFT"
	EvaluationSubmitted EvaluationStatus = "SUBMITTED"
)

// Hackathon is an independently scoped event. Every core entity is
// partitioned by its id; cross-hackathon references are invalid.
type Hackathon struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Team represents a participating team within one hackathon.
type Team struct {
	ID                 int64
	HackathonID        int64
	Name               string
	Category           *string
	VerificationStatus VerificationStatus
	// SubmittedAt is when the team finalized its submission. It is the
	// secondary leaderboard sort key (earlier submission wins ties).
	SubmittedAt *time.Time
	CreatedAt   time.Time
}

// Judge represents a reviewer. Judges join a hackathon through pool
// membership and receive work through assignments.
type Judge struct {
	ID          int64
	DisplayName string
	Active      bool
	CreatedAt   time.Time
}

// Assignment is a judge-to-team reviewing responsibility for one hackathon.
// The (judge, team, hackathon) triple is unique; rows carry no lifecycle
// beyond existence and are fully replaced during rebalance.
type Assignment struct {
	ID          int64
	HackathonID int64
	JudgeID     int64
	TeamID      int64
	CreatedAt   time.Time
}

// CriterionScores holds the four judging criteria, each on a 0-10 scale.
type CriterionScores struct {
	Innovation   int `json:"innovation"`
	Execution    int `json:"execution"`
	Impact       int `json:"impact"`
	Presentation int `json:"presentation"`
}

// Mean returns the average of the four criterion scores.
func (s CriterionScores) Mean() float64 {
	return float64(s.Innovation+s.Execution+s.Impact+s.Presentation) / 4.0
}

// Evaluation is one judge's scored review of one team's submission,
// unique per (judge, team, hackathon).
type Evaluation struct {
	ID          int64
	HackathonID int64
	JudgeID     int64
	TeamID      int64
	Scores      CriterionScores
	Comments    *string
	Status      EvaluationStatus
	// LockedByAdmin makes a submitted evaluation immutable to the judge.
	LockedByAdmin bool
	SubmittedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AggregateScore is the derived per-team mean across submitted evaluations.
// Rows are a cache of a deterministic function over evaluation state and
// are fully recomputed on each aggregation run.
type AggregateScore struct {
	HackathonID  int64
	TeamID       int64
	AverageScore float64
	ReviewCount  int
	ComputedAt   time.Time
}

// LeaderboardEntry is a team's computed rank for one hackathon. Rank is
// relative only within the same hackathon; IsPublished gates external
// visibility and survives recomputation.
type LeaderboardEntry struct {
	HackathonID int64
	TeamID      int64
	TeamName    string
	Category    *string
	FinalScore  float64
	Rank        int
	IsPublished bool
	ComputedAt  time.Time
}
