package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refSet(pairs ...[2]int64) []AssignmentRef {
	out := make([]AssignmentRef, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, AssignmentRef{JudgeID: p[0], TeamID: p[1]})
	}
	return out
}

func TestPlanRebalance_EmptyMovableIsNoOp(t *testing.T) {
	plan, err := PlanRebalance([]int64{1, 2}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Assignments)
	assert.Empty(t, plan.TargetLoads)
	assert.Zero(t, plan.Moved)
}

func TestPlanRebalance_NoJudgesFails(t *testing.T) {
	_, err := PlanRebalance(nil, refSet([2]int64{1, 10}), nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestPlanRebalance_LoadsDifferByAtMostOne(t *testing.T) {
	tests := []struct {
		name   string
		judges []int64
		teams  int
	}{
		{"even split", []int64{1, 2, 3}, 9},
		{"one remainder", []int64{1, 2, 3}, 10},
		{"fewer teams than judges", []int64{1, 2, 3, 4, 5}, 3},
		{"single judge", []int64{7}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var movable []AssignmentRef
			for i := 0; i < tt.teams; i++ {
				// Start with everything on the first judge.
				movable = append(movable, AssignmentRef{JudgeID: tt.judges[0], TeamID: int64(100 + i)})
			}

			plan, err := PlanRebalance(tt.judges, movable, nil)
			require.NoError(t, err)
			require.Len(t, plan.Assignments, tt.teams)

			loads := make(map[int64]int)
			for _, a := range plan.Assignments {
				loads[a.JudgeID]++
			}
			min, max := tt.teams, 0
			for _, j := range tt.judges {
				if loads[j] < min {
					min = loads[j]
				}
				if loads[j] > max {
					max = loads[j]
				}
			}
			assert.LessOrEqual(t, max-min, 1, "per-judge loads must differ by at most one")
			assert.Equal(t, loads, mapFromTargets(plan.TargetLoads, tt.judges))
		})
	}
}

func mapFromTargets(targets map[int64]int, judges []int64) map[int64]int {
	out := make(map[int64]int, len(judges))
	for _, j := range judges {
		if targets[j] > 0 {
			out[j] = targets[j]
		}
	}
	return out
}

func TestPlanRebalance_RemainderGoesToLowestJudgeIDs(t *testing.T) {
	// 5 teams over judges {3, 1, 2}: base 1, remainder 2 -> judges 1 and 2
	// each get 2, judge 3 gets 1. Sorting makes input order irrelevant.
	movable := refSet(
		[2]int64{3, 10}, [2]int64{3, 11}, [2]int64{3, 12}, [2]int64{3, 13}, [2]int64{3, 14},
	)
	plan, err := PlanRebalance([]int64{3, 1, 2}, movable, nil)
	require.NoError(t, err)

	assert.Equal(t, map[int64]int{1: 2, 2: 2, 3: 1}, plan.TargetLoads)
}

func TestPlanRebalance_Deterministic(t *testing.T) {
	judges := []int64{2, 1, 3}
	movable := refSet(
		[2]int64{1, 30}, [2]int64{2, 10}, [2]int64{3, 20}, [2]int64{1, 40},
	)
	first, err := PlanRebalance(judges, movable, nil)
	require.NoError(t, err)

	// Same input shuffled must produce an identical plan.
	shuffled := refSet(
		[2]int64{1, 40}, [2]int64{3, 20}, [2]int64{2, 10}, [2]int64{1, 30},
	)
	second, err := PlanRebalance([]int64{3, 2, 1}, shuffled, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.TargetLoads, second.TargetLoads)
	assert.Equal(t, first.Moved, second.Moved)
}

func TestPlanRebalance_MovedCountsOnlyChangedPairs(t *testing.T) {
	// Teams 10 and 20 are already balanced on judges 1 and 2; the plan
	// should keep them in place.
	movable := refSet([2]int64{1, 10}, [2]int64{2, 20})
	plan, err := PlanRebalance([]int64{1, 2}, movable, nil)
	require.NoError(t, err)
	assert.Zero(t, plan.Moved)
}

func TestPlanRebalance_TeamWithSeveralJudgesStaysOnDistinctJudges(t *testing.T) {
	// Two reviewers per team: judges 1 and 2 each hold teams 10..40. The
	// plan must never hand the same team twice to one judge.
	movable := refSet(
		[2]int64{1, 10}, [2]int64{1, 20}, [2]int64{1, 30}, [2]int64{1, 40},
		[2]int64{2, 10}, [2]int64{2, 20}, [2]int64{2, 30}, [2]int64{2, 40},
	)
	plan, err := PlanRebalance([]int64{1, 2}, movable, nil)
	require.NoError(t, err)
	require.Len(t, plan.Assignments, 8)

	seen := make(map[AssignmentRef]struct{})
	for _, a := range plan.Assignments {
		_, dup := seen[a]
		require.False(t, dup, "pair (judge %d, team %d) placed twice", a.JudgeID, a.TeamID)
		seen[a] = struct{}{}
	}
	assert.Equal(t, map[int64]int{1: 4, 2: 4}, plan.TargetLoads)
	assert.Zero(t, plan.Moved)
}

func TestPlanRebalance_DuplicateTeamsSpreadWithUnevenPool(t *testing.T) {
	// Team 10 has three movable copies held by different judges; they must
	// land on three distinct judges even while the single-copy teams fill
	// the remaining quota.
	movable := refSet(
		[2]int64{1, 10}, [2]int64{2, 10}, [2]int64{3, 10},
		[2]int64{1, 20}, [2]int64{1, 30}, [2]int64{1, 40},
	)
	plan, err := PlanRebalance([]int64{1, 2, 3}, movable, nil)
	require.NoError(t, err)
	require.Len(t, plan.Assignments, 6)

	judgesOfTeam10 := make(map[int64]struct{})
	loads := make(map[int64]int)
	for _, a := range plan.Assignments {
		loads[a.JudgeID]++
		if a.TeamID == 10 {
			judgesOfTeam10[a.JudgeID] = struct{}{}
		}
	}
	assert.Len(t, judgesOfTeam10, 3)
	assert.Equal(t, map[int64]int{1: 2, 2: 2, 3: 2}, loads)
}

func TestPlanRebalance_AvoidsFrozenPairs(t *testing.T) {
	// Judge 1 already holds a submitted evaluation for team 10, so the
	// movable copy of team 10 must land elsewhere.
	movable := refSet([2]int64{2, 10}, [2]int64{1, 20})
	frozen := refSet([2]int64{1, 10})

	plan, err := PlanRebalance([]int64{1, 2}, movable, frozen)
	require.NoError(t, err)
	for _, a := range plan.Assignments {
		assert.NotEqual(t, AssignmentRef{JudgeID: 1, TeamID: 10}, a,
			"planned pair collides with a frozen assignment")
	}
}

func TestPlanRebalance_FailsWhenEveryJudgeHoldsTeam(t *testing.T) {
	// The only pool judge already holds a frozen copy of team 10; the
	// movable copy has nowhere to go.
	movable := refSet([2]int64{2, 10})
	frozen := refSet([2]int64{1, 10})

	_, err := PlanRebalance([]int64{1}, movable, frozen)
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}
