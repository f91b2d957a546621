// Package collab implements the narrow collaborator contracts the core
// consumes: authorization and submission-state answers. Both are derived
// from the shared storage substrate here; swapping in remote services
// only touches this package.
package collab

import (
	"context"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
)

// PoolAuthorizer answers "is this judge authorized for this hackathon"
// from judge-pool membership.
type PoolAuthorizer struct {
	repo ports.AssignmentRepository
}

func NewPoolAuthorizer(repo ports.AssignmentRepository) *PoolAuthorizer {
	return &PoolAuthorizer{repo: repo}
}

func (a *PoolAuthorizer) IsJudge(ctx context.Context, hackathonID, judgeID int64) (bool, error) {
	return a.repo.IsPoolJudge(ctx, hackathonID, judgeID)
}

// SubmissionStatus answers "has this team's submission reached a finalized
// state" from the team record's submission timestamp.
type SubmissionStatus struct {
	repo ports.ScoringRepository
}

func NewSubmissionStatus(repo ports.ScoringRepository) *SubmissionStatus {
	return &SubmissionStatus{repo: repo}
}

func (s *SubmissionStatus) IsFinalized(ctx context.Context, hackathonID, teamID int64) (bool, error) {
	team, err := s.repo.GetTeam(ctx, hackathonID, teamID)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return team.SubmittedAt != nil, nil
}

var (
	_ ports.Authorizer        = (*PoolAuthorizer)(nil)
	_ ports.SubmissionChecker = (*SubmissionStatus)(nil)
)
