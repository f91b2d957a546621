package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
)

// submitEvaluation wires the assignment and records a final submission with
// a flat score on all four criteria.
func submitEvaluation(t *testing.T, f *fixture, judgeID, teamID int64, score int) {
	t.Helper()
	ctx := context.Background()
	_, err := f.assignments.Assign(ctx, hackathonID, []ports.AssignmentPair{{JudgeID: judgeID, TeamID: teamID}})
	require.NoError(t, err)
	scores := domain.CriterionScores{Innovation: score, Execution: score, Impact: score, Presentation: score}
	_, err = f.evaluations.SubmitFinal(ctx, hackathonID, judgeID, teamID, scores, nil)
	require.NoError(t, err)
}

func TestAggregate_AveragesAcrossJudges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	j1 := f.seedJudge(hackathonID, "alice")
	j2 := f.seedJudge(hackathonID, "bob")
	teamID := f.seedTeam(hackathonID, "rocket")

	// Judge 1 scores all eights, judge 2 all sixes: team average 7.0.
	submitEvaluation(t, f, j1, teamID, 8)
	submitEvaluation(t, f, j2, teamID, 6)

	written, err := f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	rows := f.repo.Aggregates(hackathonID)
	require.Len(t, rows, 1)
	assert.Equal(t, teamID, rows[0].TeamID)
	assert.InDelta(t, 7.0, rows[0].AverageScore, 1e-9)
	assert.Equal(t, 2, rows[0].ReviewCount)
}

func TestAggregate_IgnoresDrafts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	j1 := f.seedJudge(hackathonID, "alice")
	j2 := f.seedJudge(hackathonID, "bob")
	teamID := f.seedTeam(hackathonID, "rocket")

	submitEvaluation(t, f, j1, teamID, 8)

	_, err := f.assignments.Assign(ctx, hackathonID, []ports.AssignmentPair{{JudgeID: j2, TeamID: teamID}})
	require.NoError(t, err)
	draft := domain.CriterionScores{Innovation: 2, Execution: 2, Impact: 2, Presentation: 2}
	_, err = f.evaluations.SaveDraft(ctx, hackathonID, j2, teamID, draft, nil)
	require.NoError(t, err)

	_, err = f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)

	rows := f.repo.Aggregates(hackathonID)
	require.Len(t, rows, 1)
	assert.InDelta(t, 8.0, rows[0].AverageScore, 1e-9)
	assert.Equal(t, 1, rows[0].ReviewCount)
}

func TestAggregate_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	j1 := f.seedJudge(hackathonID, "alice")
	teamID := f.seedTeam(hackathonID, "rocket")
	submitEvaluation(t, f, j1, teamID, 9)

	_, err := f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)
	first := f.repo.Aggregates(hackathonID)

	_, err = f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)
	second := f.repo.Aggregates(hackathonID)

	require.Len(t, second, len(first))
	assert.Equal(t, first[0].AverageScore, second[0].AverageScore)
	assert.Equal(t, first[0].ReviewCount, second[0].ReviewCount)
}

func TestAggregate_NoSubmittedEvaluations(t *testing.T) {
	f := newFixture()
	written, err := f.scoring.Aggregate(context.Background(), hackathonID)
	require.NoError(t, err)
	assert.Zero(t, written)
	assert.Empty(t, f.repo.Aggregates(hackathonID))
}

func TestComputeFinal_RanksVerifiedTeamsOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	j1 := f.seedJudge(hackathonID, "alice")

	verified := f.seedTeam(hackathonID, "rocket")
	pending := f.repo.SeedTeam(domain.Team{
		HackathonID:        hackathonID,
		Name:               "unreviewed",
		VerificationStatus: domain.VerificationPending,
		SubmittedAt:        ptrNow(),
	})
	submitEvaluation(t, f, j1, verified, 8)

	// The pending team is scored too; verification, not scoring, keeps it
	// off the leaderboard.
	j2 := f.seedJudge(hackathonID, "bob")
	submitEvaluation(t, f, j2, pending, 10)

	_, err := f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)
	require.Len(t, f.repo.Aggregates(hackathonID), 2)

	ranked, err := f.scoring.ComputeFinal(ctx, hackathonID)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, verified, ranked[0].TeamID)
	assert.Equal(t, 1, ranked[0].Rank)
}

func TestComputeFinal_TiedScoresShareRank(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Three teams tied on 9.0, one at 8.0.
	var lowTeam int64
	for i := 0; i < 4; i++ {
		judge := f.seedJudge(hackathonID, "judge")
		team := f.seedTeam(hackathonID, "team")
		score := 9
		if i == 3 {
			score = 8
			lowTeam = team
		}
		submitEvaluation(t, f, judge, team, score)
	}
	_, err := f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)

	ranked, err := f.scoring.ComputeFinal(ctx, hackathonID)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	ranks := make([]int, len(ranked))
	for i, r := range ranked {
		ranks[i] = r.Rank
	}
	assert.Equal(t, []int{1, 1, 1, 4}, ranks)
	assert.Equal(t, lowTeam, ranked[3].TeamID)
}

func TestComputeFinal_RecomputePreservesPublishFlag(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	j1 := f.seedJudge(hackathonID, "alice")
	teamID := f.seedTeam(hackathonID, "rocket")
	submitEvaluation(t, f, j1, teamID, 8)

	_, err := f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)
	_, err = f.scoring.ComputeFinal(ctx, hackathonID)
	require.NoError(t, err)

	updated, err := f.scoring.SetPublished(ctx, hackathonID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	// Recompute must not flip visibility back to hidden.
	_, err = f.scoring.ComputeFinal(ctx, hackathonID)
	require.NoError(t, err)

	page, err := f.scoring.PublicView(ctx, hackathonID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.True(t, page.Entries[0].IsPublished)
}

func TestSetPublished_EmitsNotification(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	j1 := f.seedJudge(hackathonID, "alice")
	teamID := f.seedTeam(hackathonID, "rocket")
	submitEvaluation(t, f, j1, teamID, 8)

	_, err := f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)
	_, err = f.scoring.ComputeFinal(ctx, hackathonID)
	require.NoError(t, err)

	_, err = f.scoring.SetPublished(ctx, hackathonID, true)
	require.NoError(t, err)
	assert.Contains(t, f.notifier.events(), "leaderboard.published")

	_, err = f.scoring.SetPublished(ctx, hackathonID, false)
	require.NoError(t, err)
	assert.Contains(t, f.notifier.events(), "leaderboard.unpublished")
}

func TestPublicView_HidesUnpublishedAndCapsPageSize(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	j1 := f.seedJudge(hackathonID, "alice")
	teamID := f.seedTeam(hackathonID, "rocket")
	submitEvaluation(t, f, j1, teamID, 8)

	_, err := f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)
	_, err = f.scoring.ComputeFinal(ctx, hackathonID)
	require.NoError(t, err)

	// Not yet published: the public view is empty while the internal view
	// sees the entry.
	public, err := f.scoring.PublicView(ctx, hackathonID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, public.Entries)

	internal, err := f.scoring.InternalView(ctx, hackathonID, "", "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, internal.Entries, 1)

	// Oversized page requests are clamped to the public cap.
	capped, err := f.scoring.PublicView(ctx, hackathonID, 1, 10_000)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxPublicPageSize, capped.PerPage)
}

func TestInternalView_FiltersByNameAndCategory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	web := "web"
	ml := "ml"
	j1 := f.seedJudge(hackathonID, "alice")
	j2 := f.seedJudge(hackathonID, "bob")

	teamA := f.repo.SeedTeam(domain.Team{
		HackathonID: hackathonID, Name: "Rocket Crew",
		Category:           &web,
		VerificationStatus: domain.VerificationVerified,
		SubmittedAt:        ptrNow(),
	})
	teamB := f.repo.SeedTeam(domain.Team{
		HackathonID: hackathonID, Name: "Comet Squad",
		Category:           &ml,
		VerificationStatus: domain.VerificationVerified,
		SubmittedAt:        ptrNow(),
	})
	submitEvaluation(t, f, j1, teamA, 9)
	submitEvaluation(t, f, j2, teamB, 7)

	_, err := f.scoring.Aggregate(ctx, hackathonID)
	require.NoError(t, err)
	_, err = f.scoring.ComputeFinal(ctx, hackathonID)
	require.NoError(t, err)

	byName, err := f.scoring.InternalView(ctx, hackathonID, "rocket", "", 1, 10)
	require.NoError(t, err)
	require.Len(t, byName.Entries, 1)
	assert.Equal(t, teamA, byName.Entries[0].TeamID)

	byCategory, err := f.scoring.InternalView(ctx, hackathonID, "", "ml", 1, 10)
	require.NoError(t, err)
	require.Len(t, byCategory.Entries, 1)
	assert.Equal(t, teamB, byCategory.Entries[0].TeamID)
}
