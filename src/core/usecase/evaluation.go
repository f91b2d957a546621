package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
)

// aggregationTimeout bounds the background recompute triggered by a final
// submission. It runs detached from the request context.
const aggregationTimeout = 30 * time.Second

// Aggregator triggers a score recompute for a hackathon. Implemented by
// ScoringService; declared here so the evaluation flow can fire the
// best-effort recompute without a package cycle.
type Aggregator interface {
	Aggregate(ctx context.Context, hackathonID int64) (int, error)
}

// EvaluationService drives the per-(judge, team) evaluation state machine:
// none -> draft -> submitted, plus the admin lock on submitted records.
type EvaluationService struct {
	repo        ports.CoreRepository
	submissions ports.SubmissionChecker
	notifier    ports.Notifier
	metrics     ports.CoreMetrics
	log         *slog.Logger

	aggregator Aggregator
}

func NewEvaluationService(
	repo ports.CoreRepository,
	submissions ports.SubmissionChecker,
	notifier ports.Notifier,
	metrics ports.CoreMetrics,
	log *slog.Logger,
) *EvaluationService {
	return &EvaluationService{
		repo:        repo,
		submissions: submissions,
		notifier:    notifier,
		metrics:     metrics,
		log:         log,
	}
}

// SetAggregator wires the score-aggregation trigger. Called once during
// server wiring, after both services exist.
func (s *EvaluationService) SetAggregator(agg Aggregator) {
	s.aggregator = agg
}

// requireAssignment verifies the judge is responsible for the team. A
// missing assignment is forbidden, not not-found: the team may exist but
// simply not be this judge's responsibility.
func (s *EvaluationService) requireAssignment(ctx context.Context, hackathonID, judgeID, teamID int64) error {
	_, err := s.repo.GetAssignment(ctx, hackathonID, judgeID, teamID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NewForbiddenError("team is not assigned to this judge")
		}
		return err
	}
	return nil
}

// requireFinalizedSubmission blocks evaluation writes against
// work-in-progress submissions.
func (s *EvaluationService) requireFinalizedSubmission(ctx context.Context, hackathonID, teamID int64) error {
	finalized, err := s.submissions.IsFinalized(ctx, hackathonID, teamID)
	if err != nil {
		return err
	}
	if !finalized {
		return domain.NewConflictError("team submission is not finalized")
	}
	return nil
}

// SaveDraft upserts the judge's draft for the team. Drafting clears any
// previous submittedAt; a submitted record rejects the draft save.
func (s *EvaluationService) SaveDraft(ctx context.Context, hackathonID, judgeID, teamID int64, scores domain.CriterionScores, comments *string) (*domain.Evaluation, error) {
	if err := domain.ValidateScores(scores); err != nil {
		return nil, err
	}
	if err := s.requireAssignment(ctx, hackathonID, judgeID, teamID); err != nil {
		return nil, err
	}
	if err := s.requireFinalizedSubmission(ctx, hackathonID, teamID); err != nil {
		return nil, err
	}
	return s.repo.UpsertDraft(ctx, domain.Evaluation{
		HackathonID: hackathonID,
		JudgeID:     judgeID,
		TeamID:      teamID,
		Scores:      scores,
		Comments:    comments,
		Status:      domain.EvaluationDraft,
	})
}

// SubmitFinal finalizes the evaluation. Re-submission is rejected, not
// overwritten. On success a best-effort aggregation recompute runs in the
// background; its failure never fails the submission.
func (s *EvaluationService) SubmitFinal(ctx context.Context, hackathonID, judgeID, teamID int64, scores domain.CriterionScores, comments *string) (*domain.Evaluation, error) {
	if err := domain.ValidateScores(scores); err != nil {
		return nil, err
	}
	if err := s.requireAssignment(ctx, hackathonID, judgeID, teamID); err != nil {
		return nil, err
	}
	if err := s.requireFinalizedSubmission(ctx, hackathonID, teamID); err != nil {
		return nil, err
	}

	eval, err := s.repo.SubmitEvaluation(ctx, domain.Evaluation{
		HackathonID: hackathonID,
		JudgeID:     judgeID,
		TeamID:      teamID,
		Scores:      scores,
		Comments:    comments,
		Status:      domain.EvaluationSubmitted,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.EvaluationSubmitted()
	s.triggerAggregation(hackathonID)
	s.notify(ctx, hackathonID, teamID, "evaluation.submitted")
	return eval, nil
}

// UpdateSubmitted edits scores/comments of a submitted, unlocked
// evaluation. Status and submittedAt are untouched.
func (s *EvaluationService) UpdateSubmitted(ctx context.Context, hackathonID, judgeID, teamID int64, scores domain.CriterionScores, comments *string) (*domain.Evaluation, error) {
	if err := domain.ValidateScores(scores); err != nil {
		return nil, err
	}
	if err := s.requireAssignment(ctx, hackathonID, judgeID, teamID); err != nil {
		return nil, err
	}
	return s.repo.UpdateSubmittedEvaluation(ctx, hackathonID, judgeID, teamID, scores, comments)
}

// Get returns the judge's own evaluation for the team. When no row exists
// yet, a virtual record with status NONE is returned. The query is always
// scoped to the requesting judge, never exposing other judges' records.
func (s *EvaluationService) Get(ctx context.Context, hackathonID, judgeID, teamID int64) (*domain.Evaluation, error) {
	if err := s.requireAssignment(ctx, hackathonID, judgeID, teamID); err != nil {
		return nil, err
	}
	eval, err := s.repo.GetEvaluation(ctx, hackathonID, judgeID, teamID)
	if err != nil {
		if domain.IsNotFound(err) {
			return &domain.Evaluation{
				HackathonID: hackathonID,
				JudgeID:     judgeID,
				TeamID:      teamID,
				Status:      domain.EvaluationNone,
			}, nil
		}
		return nil, err
	}
	return eval, nil
}

// SetLock flips the admin lock on a submitted evaluation. This is the
// administrative write path; lock enforcement on judge edits happens in
// UpdateSubmitted regardless of caller identity.
func (s *EvaluationService) SetLock(ctx context.Context, hackathonID, judgeID, teamID int64, locked bool) error {
	if err := s.repo.SetEvaluationLock(ctx, hackathonID, judgeID, teamID, locked); err != nil {
		return err
	}
	s.log.Info("evaluation lock changed",
		"hackathon_id", hackathonID,
		"judge_id", judgeID,
		"team_id", teamID,
		"locked", locked,
	)
	return nil
}

// triggerAggregation runs the recompute detached from the request. The
// submission's success is independent of aggregation success.
func (s *EvaluationService) triggerAggregation(hackathonID int64) {
	if s.aggregator == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), aggregationTimeout)
		defer cancel()
		if _, err := s.aggregator.Aggregate(ctx, hackathonID); err != nil {
			s.metrics.AggregationFailure()
			s.log.Error("background aggregation failed", "hackathon_id", hackathonID, "error", err)
		}
	}()
}

// notify delivers a fire-and-forget status change; failures are swallowed.
func (s *EvaluationService) notify(ctx context.Context, hackathonID, teamID int64, event string) {
	if s.notifier == nil {
		return
	}
	n := ports.Notification{
		ID:          uuid.New().String(),
		HackathonID: hackathonID,
		TeamID:      teamID,
		Event:       event,
		Target:      ports.TargetRule{Kind: ports.TargetAll},
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notification delivery failed", "event", event, "error", err)
	}
}
