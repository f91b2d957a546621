package domain

import (
	"sort"
	"time"
)

// RankInput is one verified team entering the ranking computation.
type RankInput struct {
	TeamID int64
	Score  float64
	// SubmittedAt orders equal scores (earlier submission first). It breaks
	// ties for ordering only; tied scores still share a rank.
	SubmittedAt time.Time
}

// RankedTeam is the ranking outcome for one team.
type RankedTeam struct {
	TeamID int64
	Score  float64
	Rank   int
}

// RankByScore sorts teams by score descending, submission time ascending,
// and assigns standard competition ranks: every team in a run of equal
// scores shares the rank of the run's first row, and the next distinct
// score takes its 1-indexed position. Scores [90, 90, 90, 80] therefore
// rank [1, 1, 1, 4].
func RankByScore(inputs []RankInput) []RankedTeam {
	teams := make([]RankInput, len(inputs))
	copy(teams, inputs)
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Score != teams[j].Score {
			return teams[i].Score > teams[j].Score
		}
		if !teams[i].SubmittedAt.Equal(teams[j].SubmittedAt) {
			return teams[i].SubmittedAt.Before(teams[j].SubmittedAt)
		}
		return teams[i].TeamID < teams[j].TeamID
	})

	ranked := make([]RankedTeam, len(teams))
	runRank := 1
	for i, t := range teams {
		if i > 0 && t.Score != teams[i-1].Score {
			runRank = i + 1
		}
		ranked[i] = RankedTeam{TeamID: t.TeamID, Score: t.Score, Rank: runRank}
	}
	return ranked
}
