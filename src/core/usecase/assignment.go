package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
)

// AssignmentService owns the judge-to-team assignment matrix: direct
// assignment, reassignment, matrix reads, and the auto-balance run.
type AssignmentService struct {
	repo    ports.CoreRepository
	metrics ports.CoreMetrics
	log     *slog.Logger
}

func NewAssignmentService(repo ports.CoreRepository, metrics ports.CoreMetrics, log *slog.Logger) *AssignmentService {
	return &AssignmentService{repo: repo, metrics: metrics, log: log}
}

// Assign inserts the given pairs as new assignments. The batch is
// all-or-nothing: any existing triple rolls the whole request back with a
// conflict error.
func (s *AssignmentService) Assign(ctx context.Context, hackathonID int64, pairs []ports.AssignmentPair) ([]domain.Assignment, error) {
	if len(pairs) == 0 {
		return nil, domain.NewValidationError("pairs", "at least one assignment pair required")
	}
	seen := make(map[ports.AssignmentPair]struct{}, len(pairs))
	for _, p := range pairs {
		if p.JudgeID <= 0 {
			return nil, domain.NewValidationError("judge_id", "judge id must be positive")
		}
		if p.TeamID <= 0 {
			return nil, domain.NewValidationError("team_id", "team id must be positive")
		}
		if _, dup := seen[p]; dup {
			return nil, domain.NewConflictError(fmt.Sprintf("duplicate pair (judge %d, team %d) in request", p.JudgeID, p.TeamID))
		}
		seen[p] = struct{}{}
	}
	return s.repo.CreateAssignments(ctx, hackathonID, pairs)
}

// Reassign moves a team from one judge to another in a single transaction.
func (s *AssignmentService) Reassign(ctx context.Context, hackathonID, teamID, fromJudgeID, toJudgeID int64) (*domain.Assignment, error) {
	if fromJudgeID == toJudgeID {
		return nil, domain.NewValidationError("to_judge_id", "source and target judge are identical")
	}
	return s.repo.ReassignTeam(ctx, hackathonID, teamID, fromJudgeID, toJudgeID)
}

// Matrix returns every active pool judge with their assigned teams and
// total load. Judges with zero assignments appear with an empty list.
func (s *AssignmentService) Matrix(ctx context.Context, hackathonID int64) (*ports.AssignmentMatrix, error) {
	judges, err := s.repo.ListPoolJudges(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.repo.ListAssignmentStatuses(ctx, hackathonID)
	if err != nil {
		return nil, err
	}

	byJudge := make(map[int64][]int64, len(judges))
	for _, a := range statuses {
		byJudge[a.JudgeID] = append(byJudge[a.JudgeID], a.TeamID)
	}

	matrix := &ports.AssignmentMatrix{HackathonID: hackathonID, Judges: make([]ports.JudgeLoad, 0, len(judges))}
	for _, j := range judges {
		teams := byJudge[j.ID]
		matrix.Judges = append(matrix.Judges, ports.JudgeLoad{
			Judge:     j,
			TeamIDs:   teams,
			TotalLoad: len(teams),
		})
	}
	return matrix, nil
}

// RemoveTeam clears every assignment of a withdrawn team and returns the
// number of rows removed.
func (s *AssignmentService) RemoveTeam(ctx context.Context, hackathonID, teamID int64) (int64, error) {
	if teamID <= 0 {
		return 0, domain.NewValidationError("team_id", "team id must be positive")
	}
	deleted, err := s.repo.DeleteAssignmentsByTeam(ctx, hackathonID, teamID)
	if err != nil {
		return 0, err
	}
	s.log.Info("team assignments removed", "hackathon_id", hackathonID, "team_id", teamID, "deleted", deleted)
	return deleted, nil
}

// RemoveJudge clears every assignment of a departing judge and returns the
// number of rows removed. The orphaned teams stay unassigned until the next
// rebalance or manual assign.
func (s *AssignmentService) RemoveJudge(ctx context.Context, hackathonID, judgeID int64) (int64, error) {
	if judgeID <= 0 {
		return 0, domain.NewValidationError("judge_id", "judge id must be positive")
	}
	deleted, err := s.repo.DeleteAssignmentsByJudge(ctx, hackathonID, judgeID)
	if err != nil {
		return 0, err
	}
	s.log.Info("judge assignments removed", "hackathon_id", hackathonID, "judge_id", judgeID, "deleted", deleted)
	return deleted, nil
}

// RebalanceSummary describes the outcome of one auto-balance run.
type RebalanceSummary struct {
	MovableCount int           `json:"movable_count"`
	FrozenCount  int           `json:"frozen_count"`
	MovedCount   int           `json:"moved_count"`
	TargetLoads  map[int64]int `json:"target_loads"`
}

// Rebalance redistributes not-yet-submitted assignments so per-judge loads
// differ by at most one. Submitted (frozen) assignments never move. The
// clear+insert of the movable set applies in one transaction.
func (s *AssignmentService) Rebalance(ctx context.Context, hackathonID int64) (*RebalanceSummary, error) {
	judges, err := s.repo.ListPoolJudges(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.repo.ListAssignmentStatuses(ctx, hackathonID)
	if err != nil {
		return nil, err
	}

	var movable, frozen []domain.AssignmentRef
	for _, a := range statuses {
		ref := domain.AssignmentRef{JudgeID: a.JudgeID, TeamID: a.TeamID}
		if a.EvaluationStatus == domain.EvaluationSubmitted {
			frozen = append(frozen, ref)
			continue
		}
		movable = append(movable, ref)
	}

	summary := &RebalanceSummary{
		MovableCount: len(movable),
		FrozenCount:  len(frozen),
		TargetLoads:  map[int64]int{},
	}
	if len(movable) == 0 {
		s.log.Info("rebalance no-op: no movable assignments", "hackathon_id", hackathonID)
		return summary, nil
	}

	judgeIDs := make([]int64, 0, len(judges))
	for _, j := range judges {
		judgeIDs = append(judgeIDs, j.ID)
	}

	plan, err := domain.PlanRebalance(judgeIDs, movable, frozen)
	if err != nil {
		return nil, err
	}

	movableTeams := make([]int64, len(movable))
	for i, m := range movable {
		movableTeams[i] = m.TeamID
	}
	if err := s.repo.ApplyRebalance(ctx, hackathonID, movableTeams, plan.Assignments); err != nil {
		return nil, err
	}

	summary.MovedCount = plan.Moved
	summary.TargetLoads = plan.TargetLoads
	s.metrics.RebalanceRun()
	s.log.Info("rebalance applied",
		"hackathon_id", hackathonID,
		"movable", summary.MovableCount,
		"frozen", summary.FrozenCount,
		"moved", summary.MovedCount,
	)
	return summary, nil
}
