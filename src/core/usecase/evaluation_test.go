package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
)

func goodScores() domain.CriterionScores {
	return domain.CriterionScores{Innovation: 7, Execution: 8, Impact: 6, Presentation: 9}
}

// assignedPair seeds a judge, a finalized team, and the assignment between
// them, returning both ids.
func assignedPair(t *testing.T, f *fixture) (judgeID, teamID int64) {
	t.Helper()
	judgeID = f.seedJudge(hackathonID, "alice")
	teamID = f.seedTeam(hackathonID, "rocket")
	_, err := f.assignments.Assign(context.Background(), hackathonID, []ports.AssignmentPair{
		{JudgeID: judgeID, TeamID: teamID},
	})
	require.NoError(t, err)
	return judgeID, teamID
}

func TestSaveDraft_CreatesAndUpdates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	comment := "solid prototype"
	eval, err := f.evaluations.SaveDraft(ctx, hackathonID, judgeID, teamID, goodScores(), &comment)
	require.NoError(t, err)
	assert.Equal(t, domain.EvaluationDraft, eval.Status)
	assert.Nil(t, eval.SubmittedAt)
	require.NotNil(t, eval.Comments)
	assert.Equal(t, comment, *eval.Comments)

	// Saving again overwrites the draft in place.
	updated := domain.CriterionScores{Innovation: 5, Execution: 5, Impact: 5, Presentation: 5}
	eval, err = f.evaluations.SaveDraft(ctx, hackathonID, judgeID, teamID, updated, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.EvaluationDraft, eval.Status)
	assert.Equal(t, updated, eval.Scores)
	assert.Nil(t, eval.Comments)
}

func TestSaveDraft_RequiresAssignment(t *testing.T) {
	f := newFixture()
	judgeID := f.seedJudge(hackathonID, "alice")
	teamID := f.seedTeam(hackathonID, "rocket")

	_, err := f.evaluations.SaveDraft(context.Background(), hackathonID, judgeID, teamID, goodScores(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err), "missing assignment must be forbidden, not not-found")
}

func TestSaveDraft_RequiresFinalizedSubmission(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID := f.seedJudge(hackathonID, "alice")
	teamID := f.repo.SeedTeam(domain.Team{
		HackathonID:        hackathonID,
		Name:               "wip",
		VerificationStatus: domain.VerificationVerified,
		// No SubmittedAt: the team has not finalized its work.
	})
	_, err := f.assignments.Assign(ctx, hackathonID, []ports.AssignmentPair{{JudgeID: judgeID, TeamID: teamID}})
	require.NoError(t, err)

	_, err = f.evaluations.SaveDraft(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestSaveDraft_RejectsScoresOutOfRange(t *testing.T) {
	f := newFixture()
	judgeID, teamID := assignedPair(t, f)

	bad := domain.CriterionScores{Innovation: 11}
	_, err := f.evaluations.SaveDraft(context.Background(), hackathonID, judgeID, teamID, bad, nil)
	assert.True(t, domain.IsValidationError(err))
}

func TestSubmitFinal_FromDraftAndFromScratch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	t.Run("draft then submit", func(t *testing.T) {
		_, err := f.evaluations.SaveDraft(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
		require.NoError(t, err)

		eval, err := f.evaluations.SubmitFinal(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
		require.NoError(t, err)
		assert.Equal(t, domain.EvaluationSubmitted, eval.Status)
		require.NotNil(t, eval.SubmittedAt)
	})

	t.Run("direct submit without draft", func(t *testing.T) {
		judge2 := f.seedJudge(hackathonID, "bob")
		_, err := f.assignments.Assign(ctx, hackathonID, []ports.AssignmentPair{{JudgeID: judge2, TeamID: teamID}})
		require.NoError(t, err)

		eval, err := f.evaluations.SubmitFinal(ctx, hackathonID, judge2, teamID, goodScores(), nil)
		require.NoError(t, err)
		assert.Equal(t, domain.EvaluationSubmitted, eval.Status)
	})
}

func TestSubmitFinal_SecondSubmissionRejectedAndRecordUnchanged(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	first, err := f.evaluations.SubmitFinal(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.NoError(t, err)

	other := domain.CriterionScores{Innovation: 1, Execution: 1, Impact: 1, Presentation: 1}
	_, err = f.evaluations.SubmitFinal(ctx, hackathonID, judgeID, teamID, other, nil)
	require.Error(t, err)
	assert.True(t, domain.IsAlreadySubmitted(err))

	current, err := f.repo.GetEvaluation(ctx, hackathonID, judgeID, teamID)
	require.NoError(t, err)
	assert.Equal(t, first.Scores, current.Scores)
	assert.Equal(t, first.SubmittedAt.UTC(), current.SubmittedAt.UTC())
}

func TestSubmitFinal_DraftAfterSubmissionRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	_, err := f.evaluations.SubmitFinal(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.NoError(t, err)

	_, err = f.evaluations.SaveDraft(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsAlreadySubmitted(err))
}

func TestSubmitFinal_TriggersBackgroundAggregationAndNotification(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	agg := newBlockingAggregator()
	f.evaluations.SetAggregator(agg)

	_, err := f.evaluations.SubmitFinal(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.NoError(t, err)

	require.True(t, agg.wait(2*time.Second), "background aggregation did not run")
	assert.Contains(t, f.notifier.events(), "evaluation.submitted")
}

func TestUpdateSubmitted_EditsScoresKeepsSubmissionTime(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	submitted, err := f.evaluations.SubmitFinal(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.NoError(t, err)

	newScores := domain.CriterionScores{Innovation: 10, Execution: 10, Impact: 10, Presentation: 10}
	updated, err := f.evaluations.UpdateSubmitted(ctx, hackathonID, judgeID, teamID, newScores, nil)
	require.NoError(t, err)
	assert.Equal(t, newScores, updated.Scores)
	assert.Equal(t, domain.EvaluationSubmitted, updated.Status)
	require.NotNil(t, updated.SubmittedAt)
	assert.Equal(t, submitted.SubmittedAt.UTC(), updated.SubmittedAt.UTC())
}

func TestUpdateSubmitted_RequiresSubmittedState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	t.Run("no evaluation", func(t *testing.T) {
		_, err := f.evaluations.UpdateSubmitted(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
		assert.True(t, domain.IsNotSubmitted(err))
	})

	t.Run("still a draft", func(t *testing.T) {
		_, err := f.evaluations.SaveDraft(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
		require.NoError(t, err)
		_, err = f.evaluations.UpdateSubmitted(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
		assert.True(t, domain.IsNotSubmitted(err))
	})
}

func TestUpdateSubmitted_LockBlocksJudgeEdits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	_, err := f.evaluations.SubmitFinal(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.NoError(t, err)
	require.NoError(t, f.evaluations.SetLock(ctx, hackathonID, judgeID, teamID, true))

	_, err = f.evaluations.UpdateSubmitted(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsLocked(err))

	// Unlocking restores the edit path.
	require.NoError(t, f.evaluations.SetLock(ctx, hackathonID, judgeID, teamID, false))
	_, err = f.evaluations.UpdateSubmitted(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	assert.NoError(t, err)
}

func TestSetLock_RequiresSubmittedEvaluation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	err := f.evaluations.SetLock(ctx, hackathonID, judgeID, teamID, true)
	assert.True(t, domain.IsNotFound(err))

	_, err = f.evaluations.SaveDraft(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.NoError(t, err)
	err = f.evaluations.SetLock(ctx, hackathonID, judgeID, teamID, true)
	assert.True(t, domain.IsNotSubmitted(err))
}

func TestGet_ReturnsVirtualNoneRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	eval, err := f.evaluations.Get(ctx, hackathonID, judgeID, teamID)
	require.NoError(t, err)
	assert.Equal(t, domain.EvaluationNone, eval.Status)
	assert.Equal(t, judgeID, eval.JudgeID)
	assert.Equal(t, teamID, eval.TeamID)
	assert.Zero(t, eval.ID)
}

func TestGet_ScopedToRequestingJudge(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	judgeID, teamID := assignedPair(t, f)

	_, err := f.evaluations.SubmitFinal(ctx, hackathonID, judgeID, teamID, goodScores(), nil)
	require.NoError(t, err)

	// A second judge without an assignment cannot read the record.
	other := f.seedJudge(hackathonID, "bob")
	_, err = f.evaluations.Get(ctx, hackathonID, other, teamID)
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))
}
