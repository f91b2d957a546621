package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
)

// ScoringService runs the aggregation -> ranking -> publish pipeline.
// Aggregate and ComputeFinal are full recomputes over derived rows and are
// idempotent: re-running either without intervening evaluation changes
// produces identical output.
type ScoringService struct {
	repo     ports.CoreRepository
	notifier ports.Notifier
	metrics  ports.CoreMetrics
	log      *slog.Logger
}

func NewScoringService(repo ports.CoreRepository, notifier ports.Notifier, metrics ports.CoreMetrics, log *slog.Logger) *ScoringService {
	return &ScoringService{repo: repo, notifier: notifier, metrics: metrics, log: log}
}

// Aggregate recomputes per-team average scores from all submitted
// evaluations and upserts one aggregate row per team. It returns the number
// of teams written; zero submitted evaluations is reported as zero, not an
// error.
func (s *ScoringService) Aggregate(ctx context.Context, hackathonID int64) (int, error) {
	evals, err := s.repo.ListSubmittedEvaluations(ctx, hackathonID)
	if err != nil {
		return 0, err
	}
	if len(evals) == 0 {
		s.log.Info("aggregation skipped: no submitted evaluations", "hackathon_id", hackathonID)
		return 0, nil
	}

	type teamTotals struct {
		sum   float64
		count int
	}
	totals := make(map[int64]*teamTotals)
	for _, e := range evals {
		t := totals[e.TeamID]
		if t == nil {
			t = &teamTotals{}
			totals[e.TeamID] = t
		}
		t.sum += e.Scores.Mean()
		t.count++
	}

	teamIDs := make([]int64, 0, len(totals))
	for teamID := range totals {
		teamIDs = append(teamIDs, teamID)
	}
	sort.Slice(teamIDs, func(i, j int) bool { return teamIDs[i] < teamIDs[j] })

	now := time.Now()
	rows := make([]domain.AggregateScore, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		t := totals[teamID]
		rows = append(rows, domain.AggregateScore{
			HackathonID:  hackathonID,
			TeamID:       teamID,
			AverageScore: t.sum / float64(t.count),
			ReviewCount:  t.count,
			ComputedAt:   now,
		})
	}

	if err := s.repo.UpsertAggregates(ctx, hackathonID, rows); err != nil {
		return 0, err
	}
	s.metrics.AggregationRun()
	s.log.Info("aggregates recomputed", "hackathon_id", hackathonID, "teams", len(rows))
	return len(rows), nil
}

// ComputeFinal ranks verified teams by aggregate score (descending, earlier
// submission breaking the ordering of ties) and persists the leaderboard.
// Tied scores share a rank transitively: [90, 90, 90, 80] ranks [1, 1, 1, 4].
// Recomputation preserves any previously-set publish flag.
func (s *ScoringService) ComputeFinal(ctx context.Context, hackathonID int64) ([]domain.RankedTeam, error) {
	aggregates, err := s.repo.ListVerifiedAggregates(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if len(aggregates) == 0 {
		s.log.Info("leaderboard computation skipped: no verified aggregates", "hackathon_id", hackathonID)
		return nil, nil
	}

	inputs := make([]domain.RankInput, len(aggregates))
	for i, a := range aggregates {
		inputs[i] = domain.RankInput{
			TeamID:      a.TeamID,
			Score:       a.AverageScore,
			SubmittedAt: a.SubmittedAt,
		}
	}
	ranked := domain.RankByScore(inputs)

	if err := s.repo.UpsertLeaderboard(ctx, hackathonID, ranked, time.Now()); err != nil {
		return nil, err
	}
	s.metrics.LeaderboardComputed()
	s.log.Info("leaderboard computed", "hackathon_id", hackathonID, "entries", len(ranked))
	return ranked, nil
}

// SetPublished toggles external visibility on every leaderboard entry of
// the hackathon and returns the number of entries updated.
func (s *ScoringService) SetPublished(ctx context.Context, hackathonID int64, publish bool) (int64, error) {
	count, err := s.repo.SetLeaderboardPublished(ctx, hackathonID, publish)
	if err != nil {
		return 0, err
	}

	event := "leaderboard.unpublished"
	if publish {
		event = "leaderboard.published"
	}
	s.notifyAll(ctx, hackathonID, event)
	s.log.Info("leaderboard publish flag updated", "hackathon_id", hackathonID, "published", publish, "entries", count)
	return count, nil
}

// InternalView is the admin leaderboard read: paginated, filterable by team
// name and category, ignoring the publish flag.
func (s *ScoringService) InternalView(ctx context.Context, hackathonID int64, nameQuery, category string, page, perPage int) (*ports.LeaderboardPage, error) {
	page, perPage = clampPage(page, perPage, domain.MaxInternalPageSize)
	return s.repo.ListLeaderboard(ctx, hackathonID, ports.LeaderboardFilter{
		NameQuery:     nameQuery,
		Category:      category,
		PublishedOnly: false,
		Page:          page,
		PerPage:       perPage,
	})
}

// PublicView is the unauthenticated read: published entries only, page size
// hard-capped, no team-name search.
func (s *ScoringService) PublicView(ctx context.Context, hackathonID int64, page, perPage int) (*ports.LeaderboardPage, error) {
	page, perPage = clampPage(page, perPage, domain.MaxPublicPageSize)
	return s.repo.ListLeaderboard(ctx, hackathonID, ports.LeaderboardFilter{
		PublishedOnly: true,
		Page:          page,
		PerPage:       perPage,
	})
}

func clampPage(page, perPage, maxPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = domain.DefaultPageSize
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func (s *ScoringService) notifyAll(ctx context.Context, hackathonID int64, event string) {
	if s.notifier == nil {
		return
	}
	n := ports.Notification{
		ID:          uuid.New().String(),
		HackathonID: hackathonID,
		Event:       event,
		Target:      ports.TargetRule{Kind: ports.TargetAll},
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notification delivery failed", "event", event, "error", err)
	}
}
