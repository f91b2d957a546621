// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/repo. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"
	"time"

	"hackboard/src/core/domain"
)

// Repository is the base interface for all repositories.
// Concrete repositories should embed this and add entity-specific methods.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// AssignmentPair is one (judge, team) pair in a bulk assign request.
type AssignmentPair struct {
	JudgeID int64
	TeamID  int64
}

// JudgeLoad is one row of the assignment matrix: a judge with its
// assigned teams. Judges with zero assignments still appear when they
// belong to the hackathon's judge pool.
type JudgeLoad struct {
	Judge     domain.Judge
	TeamIDs   []int64
	TotalLoad int
}

// AssignmentMatrix is the per-hackathon judge/team assignment view.
type AssignmentMatrix struct {
	HackathonID int64
	Judges      []JudgeLoad
}

// AssignmentStatus pairs an assignment with its evaluation state, used to
// partition frozen from movable work during rebalance.
type AssignmentStatus struct {
	JudgeID          int64
	TeamID           int64
	EvaluationStatus domain.EvaluationStatus
}

// VerifiedAggregate joins an aggregate score with the verified team's
// submission time, the input row for leaderboard computation.
type VerifiedAggregate struct {
	TeamID       int64
	AverageScore float64
	SubmittedAt  time.Time
}

// LeaderboardFilter controls leaderboard read views.
type LeaderboardFilter struct {
	// NameQuery matches team names case-insensitively. Internal view only;
	// the public view never exposes name search.
	NameQuery string
	// Category filters by team category when non-empty.
	Category string
	// PublishedOnly restricts to published entries (public view).
	PublishedOnly bool
	Page          int
	PerPage       int
}

// LeaderboardPage is one page of leaderboard entries.
type LeaderboardPage struct {
	Entries    []domain.LeaderboardEntry
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// AssignmentRepository owns judge-to-team assignment rows.
type AssignmentRepository interface {
	// CreateAssignments inserts all pairs as one transaction. Any duplicate
	// (judge, team, hackathon) triple rolls the whole batch back with a
	// conflict error.
	CreateAssignments(ctx context.Context, hackathonID int64, pairs []AssignmentPair) ([]domain.Assignment, error)

	// ReassignTeam atomically removes (fromJudgeID, teamID) and inserts
	// (toJudgeID, teamID). Missing source is a not-found error; an existing
	// target is a conflict, and the source row survives the rollback.
	ReassignTeam(ctx context.Context, hackathonID, teamID, fromJudgeID, toJudgeID int64) (*domain.Assignment, error)

	GetAssignment(ctx context.Context, hackathonID, judgeID, teamID int64) (*domain.Assignment, error)
	DeleteAssignmentsByTeam(ctx context.Context, hackathonID, teamID int64) (int64, error)
	DeleteAssignmentsByJudge(ctx context.Context, hackathonID, judgeID int64) (int64, error)

	// ListPoolJudges returns every active judge in the hackathon's pool,
	// including judges with zero assignments.
	ListPoolJudges(ctx context.Context, hackathonID int64) ([]domain.Judge, error)
	IsPoolJudge(ctx context.Context, hackathonID, judgeID int64) (bool, error)

	// ListAssignmentStatuses returns every assignment with its evaluation
	// state (NONE when no evaluation row exists).
	ListAssignmentStatuses(ctx context.Context, hackathonID int64) ([]AssignmentStatus, error)

	// ApplyRebalance deletes the movable assignment rows and inserts the
	// planned ones in a single transaction.
	ApplyRebalance(ctx context.Context, hackathonID int64, movableTeamIDs []int64, plan []domain.AssignmentRef) error
}

// EvaluationRepository owns one evaluation record per (judge, team) pair
// and enforces the state-machine guards transactionally.
type EvaluationRepository interface {
	GetEvaluation(ctx context.Context, hackathonID, judgeID, teamID int64) (*domain.Evaluation, error)

	// UpsertDraft creates or updates the draft row, clearing submittedAt.
	// A submitted record rejects the upsert with an already-submitted error.
	UpsertDraft(ctx context.Context, eval domain.Evaluation) (*domain.Evaluation, error)

	// SubmitEvaluation finalizes the evaluation, setting submittedAt. A
	// pre-existing submitted record yields an already-submitted error and
	// leaves the stored row unchanged.
	SubmitEvaluation(ctx context.Context, eval domain.Evaluation) (*domain.Evaluation, error)

	// UpdateSubmittedEvaluation edits scores/comments of a submitted,
	// unlocked evaluation. Status and submittedAt are untouched.
	UpdateSubmittedEvaluation(ctx context.Context, hackathonID, judgeID, teamID int64, scores domain.CriterionScores, comments *string) (*domain.Evaluation, error)

	// SetEvaluationLock flips the admin lock on a submitted evaluation.
	SetEvaluationLock(ctx context.Context, hackathonID, judgeID, teamID int64, locked bool) error
}

// ScoringRepository owns the derived aggregate and leaderboard rows.
type ScoringRepository interface {
	GetTeam(ctx context.Context, hackathonID, teamID int64) (*domain.Team, error)

	// ListSubmittedEvaluations returns every submitted evaluation for teams
	// of the hackathon, the input to aggregation.
	ListSubmittedEvaluations(ctx context.Context, hackathonID int64) ([]domain.Evaluation, error)

	// UpsertAggregates overwrites the aggregate rows for the given teams.
	UpsertAggregates(ctx context.Context, hackathonID int64, rows []domain.AggregateScore) error

	// ListVerifiedAggregates returns aggregates joined to verified teams.
	ListVerifiedAggregates(ctx context.Context, hackathonID int64) ([]VerifiedAggregate, error)

	// UpsertLeaderboard writes rank rows, preserving any previously-set
	// isPublished flag.
	UpsertLeaderboard(ctx context.Context, hackathonID int64, ranked []domain.RankedTeam, computedAt time.Time) error

	// SetLeaderboardPublished bulk-updates the publish flag and returns the
	// number of entries updated.
	SetLeaderboardPublished(ctx context.Context, hackathonID int64, published bool) (int64, error)

	ListLeaderboard(ctx context.Context, hackathonID int64, filter LeaderboardFilter) (*LeaderboardPage, error)
}

// CoreRepository is the composite repository covering the judge-allocation
// and scoring core.
type CoreRepository interface {
	Repository
	AssignmentRepository
	EvaluationRepository
	ScoringRepository
}
