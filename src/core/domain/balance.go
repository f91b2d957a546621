package domain

import (
	"fmt"
	"sort"
)

// AssignmentRef identifies one (judge, team) assignment row.
type AssignmentRef struct {
	JudgeID int64
	TeamID  int64
}

// BalancePlan is the outcome of planning a rebalance run.
type BalancePlan struct {
	// Assignments are the rows to insert, replacing the movable set.
	Assignments []AssignmentRef
	// TargetLoads maps each judge to its planned movable load.
	TargetLoads map[int64]int
	// Moved counts planned pairs that did not exist before the run.
	Moved int
}

// PlanRebalance distributes the movable assignments across the given judge
// pool so per-judge loads differ by at most one. A team reviewed by several
// judges keeps its copies on distinct judges, and no placement repeats a
// frozen (judge, team) pair. Judges are ordered ascending by id and movable
// pairs by (team id, judge id), keeping the plan deterministic regardless of
// input order. The caller applies the plan transactionally (clear movable
// rows, insert the planned ones).
func PlanRebalance(judgeIDs []int64, movable, frozen []AssignmentRef) (*BalancePlan, error) {
	if len(movable) == 0 {
		return &BalancePlan{TargetLoads: map[int64]int{}}, nil
	}
	if len(judgeIDs) == 0 {
		return nil, NewValidationError("judges", "cannot rebalance: hackathon has no active judges")
	}

	judges := make([]int64, len(judgeIDs))
	copy(judges, judgeIDs)
	sort.Slice(judges, func(i, j int) bool { return judges[i] < judges[j] })

	pairs := make([]AssignmentRef, len(movable))
	copy(pairs, movable)
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].TeamID != pairs[j].TeamID {
			return pairs[i].TeamID < pairs[j].TeamID
		}
		return pairs[i].JudgeID < pairs[j].JudgeID
	})

	previous := make(map[AssignmentRef]struct{}, len(pairs))
	for _, m := range pairs {
		previous[m] = struct{}{}
	}

	// taken holds every (judge, team) pair already spoken for: the frozen
	// rows that survive the rebalance plus the placements made so far.
	taken := make(map[AssignmentRef]struct{}, len(frozen)+len(pairs))
	for _, f := range frozen {
		taken[f] = struct{}{}
	}

	plan := &BalancePlan{
		Assignments: make([]AssignmentRef, 0, len(pairs)),
		TargetLoads: make(map[int64]int, len(judges)),
	}
	for _, j := range judges {
		plan.TargetLoads[j] = 0
	}

	for _, m := range pairs {
		// Lowest planned load wins; ties go to the lowest judge id, so the
		// base+1 remainder lands on the first judges in id order.
		var target int64
		found := false
		for _, j := range judges {
			if _, busy := taken[AssignmentRef{JudgeID: j, TeamID: m.TeamID}]; busy {
				continue
			}
			if !found || plan.TargetLoads[j] < plan.TargetLoads[target] {
				target = j
				found = true
			}
		}
		if !found {
			return nil, NewConflictError(fmt.Sprintf("team %d is already assigned to every available judge", m.TeamID))
		}

		placed := AssignmentRef{JudgeID: target, TeamID: m.TeamID}
		taken[placed] = struct{}{}
		plan.Assignments = append(plan.Assignments, placed)
		plan.TargetLoads[target]++
		if _, kept := previous[placed]; !kept {
			plan.Moved++
		}
	}
	return plan, nil
}
