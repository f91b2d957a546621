package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
)

type pairKey struct {
	judgeID int64
	teamID  int64
}

// MemoryRepository is an in-memory ports.CoreRepository with the same
// semantics as the Postgres adapter, including uniqueness conflicts and
// state-machine guards. It backs unit and handler tests and local runs
// without a database.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64

	judges      map[int64]domain.Judge
	teams       map[int64]domain.Team
	pool        map[int64]map[int64]struct{}
	assignments map[int64]map[pairKey]domain.Assignment
	evaluations map[int64]map[pairKey]domain.Evaluation
	aggregates  map[int64]map[int64]domain.AggregateScore
	leaderboard map[int64]map[int64]domain.LeaderboardEntry
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		judges:      make(map[int64]domain.Judge),
		teams:       make(map[int64]domain.Team),
		pool:        make(map[int64]map[int64]struct{}),
		assignments: make(map[int64]map[pairKey]domain.Assignment),
		evaluations: make(map[int64]map[pairKey]domain.Evaluation),
		aggregates:  make(map[int64]map[int64]domain.AggregateScore),
		leaderboard: make(map[int64]map[int64]domain.LeaderboardEntry),
	}
}

func (r *MemoryRepository) Health(context.Context) error { return nil }

func (r *MemoryRepository) newID() int64 {
	r.nextID++
	return r.nextID
}

// SeedJudge registers a judge and returns its id.
func (r *MemoryRepository) SeedJudge(displayName string, active bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID()
	r.judges[id] = domain.Judge{ID: id, DisplayName: displayName, Active: active, CreatedAt: time.Now()}
	return id
}

// SeedTeam registers a team and returns its id.
func (r *MemoryRepository) SeedTeam(t domain.Team) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID()
	t.ID = id
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.teams[id] = t
	return id
}

// AddToPool places a judge in a hackathon's judge pool.
func (r *MemoryRepository) AddToPool(hackathonID, judgeID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pool[hackathonID] == nil {
		r.pool[hackathonID] = make(map[int64]struct{})
	}
	r.pool[hackathonID][judgeID] = struct{}{}
}

// Assignments

func (r *MemoryRepository) CreateAssignments(_ context.Context, hackathonID int64, pairs []ports.AssignmentPair) ([]domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byPair := r.assignments[hackathonID]
	if byPair == nil {
		byPair = make(map[pairKey]domain.Assignment)
		r.assignments[hackathonID] = byPair
	}

	// All-or-nothing: check every pair before inserting any.
	for _, p := range pairs {
		if _, exists := byPair[pairKey{p.JudgeID, p.TeamID}]; exists {
			return nil, domain.NewConflictError("judge already assigned to team")
		}
	}

	created := make([]domain.Assignment, 0, len(pairs))
	for _, p := range pairs {
		a := domain.Assignment{
			ID:          r.newID(),
			HackathonID: hackathonID,
			JudgeID:     p.JudgeID,
			TeamID:      p.TeamID,
			CreatedAt:   time.Now(),
		}
		byPair[pairKey{p.JudgeID, p.TeamID}] = a
		created = append(created, a)
	}
	return created, nil
}

func (r *MemoryRepository) ReassignTeam(_ context.Context, hackathonID, teamID, fromJudgeID, toJudgeID int64) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byPair := r.assignments[hackathonID]
	from := pairKey{fromJudgeID, teamID}
	if _, exists := byPair[from]; !exists {
		return nil, domain.NewNotFoundError("assignment")
	}
	to := pairKey{toJudgeID, teamID}
	if _, exists := byPair[to]; exists {
		return nil, domain.NewConflictError("target judge already assigned to team")
	}

	delete(byPair, from)
	a := domain.Assignment{
		ID:          r.newID(),
		HackathonID: hackathonID,
		JudgeID:     toJudgeID,
		TeamID:      teamID,
		CreatedAt:   time.Now(),
	}
	byPair[to] = a
	return &a, nil
}

func (r *MemoryRepository) GetAssignment(_ context.Context, hackathonID, judgeID, teamID int64) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assignments[hackathonID][pairKey{judgeID, teamID}]; ok {
		return &a, nil
	}
	return nil, domain.NewNotFoundError("assignment")
}

func (r *MemoryRepository) DeleteAssignmentsByTeam(_ context.Context, hackathonID, teamID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for k := range r.assignments[hackathonID] {
		if k.teamID == teamID {
			delete(r.assignments[hackathonID], k)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRepository) DeleteAssignmentsByJudge(_ context.Context, hackathonID, judgeID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for k := range r.assignments[hackathonID] {
		if k.judgeID == judgeID {
			delete(r.assignments[hackathonID], k)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRepository) ListPoolJudges(_ context.Context, hackathonID int64) ([]domain.Judge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var judges []domain.Judge
	for judgeID := range r.pool[hackathonID] {
		if j, ok := r.judges[judgeID]; ok && j.Active {
			judges = append(judges, j)
		}
	}
	sort.Slice(judges, func(i, j int) bool { return judges[i].ID < judges[j].ID })
	return judges, nil
}

func (r *MemoryRepository) IsPoolJudge(_ context.Context, hackathonID, judgeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pool[hackathonID][judgeID]; !ok {
		return false, nil
	}
	j, ok := r.judges[judgeID]
	return ok && j.Active, nil
}

func (r *MemoryRepository) ListAssignmentStatuses(_ context.Context, hackathonID int64) ([]ports.AssignmentStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var statuses []ports.AssignmentStatus
	for k := range r.assignments[hackathonID] {
		status := domain.EvaluationNone
		if e, ok := r.evaluations[hackathonID][k]; ok {
			status = e.Status
		}
		statuses = append(statuses, ports.AssignmentStatus{
			JudgeID:          k.judgeID,
			TeamID:           k.teamID,
			EvaluationStatus: status,
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].JudgeID != statuses[j].JudgeID {
			return statuses[i].JudgeID < statuses[j].JudgeID
		}
		return statuses[i].TeamID < statuses[j].TeamID
	})
	return statuses, nil
}

func (r *MemoryRepository) ApplyRebalance(_ context.Context, hackathonID int64, movableTeamIDs []int64, plan []domain.AssignmentRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byPair := r.assignments[hackathonID]
	if byPair == nil {
		byPair = make(map[pairKey]domain.Assignment)
		r.assignments[hackathonID] = byPair
	}

	movable := make(map[int64]struct{}, len(movableTeamIDs))
	for _, teamID := range movableTeamIDs {
		movable[teamID] = struct{}{}
	}

	for k := range byPair {
		if _, ok := movable[k.teamID]; !ok {
			continue
		}
		if e, ok := r.evaluations[hackathonID][k]; ok && e.Status == domain.EvaluationSubmitted {
			continue
		}
		delete(byPair, k)
	}

	for _, p := range plan {
		k := pairKey{p.JudgeID, p.TeamID}
		if _, exists := byPair[k]; exists {
			return domain.NewConflictError("concurrent assignment change during rebalance")
		}
		byPair[k] = domain.Assignment{
			ID:          r.newID(),
			HackathonID: hackathonID,
			JudgeID:     p.JudgeID,
			TeamID:      p.TeamID,
			CreatedAt:   time.Now(),
		}
	}
	return nil
}

// Evaluations

func (r *MemoryRepository) GetEvaluation(_ context.Context, hackathonID, judgeID, teamID int64) (*domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.evaluations[hackathonID][pairKey{judgeID, teamID}]; ok {
		return &e, nil
	}
	return nil, domain.NewNotFoundError("evaluation")
}

func (r *MemoryRepository) evalBucket(hackathonID int64) map[pairKey]domain.Evaluation {
	if r.evaluations[hackathonID] == nil {
		r.evaluations[hackathonID] = make(map[pairKey]domain.Evaluation)
	}
	return r.evaluations[hackathonID]
}

func (r *MemoryRepository) UpsertDraft(_ context.Context, eval domain.Evaluation) (*domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.evalBucket(eval.HackathonID)
	k := pairKey{eval.JudgeID, eval.TeamID}
	now := time.Now()

	if existing, ok := bucket[k]; ok {
		if existing.Status == domain.EvaluationSubmitted {
			return nil, domain.NewAlreadySubmittedError("cannot save draft over a submitted evaluation")
		}
		existing.Scores = eval.Scores
		existing.Comments = eval.Comments
		existing.Status = domain.EvaluationDraft
		existing.SubmittedAt = nil
		existing.UpdatedAt = now
		bucket[k] = existing
		return &existing, nil
	}

	e := eval
	e.ID = r.newID()
	e.Status = domain.EvaluationDraft
	e.SubmittedAt = nil
	e.CreatedAt = now
	e.UpdatedAt = now
	bucket[k] = e
	return &e, nil
}

func (r *MemoryRepository) SubmitEvaluation(_ context.Context, eval domain.Evaluation) (*domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.evalBucket(eval.HackathonID)
	k := pairKey{eval.JudgeID, eval.TeamID}
	now := time.Now()

	if existing, ok := bucket[k]; ok {
		if existing.Status == domain.EvaluationSubmitted {
			return nil, domain.NewAlreadySubmittedError("final evaluation already submitted for this team")
		}
		existing.Scores = eval.Scores
		existing.Comments = eval.Comments
		existing.Status = domain.EvaluationSubmitted
		existing.SubmittedAt = &now
		existing.UpdatedAt = now
		bucket[k] = existing
		return &existing, nil
	}

	e := eval
	e.ID = r.newID()
	e.Status = domain.EvaluationSubmitted
	e.SubmittedAt = &now
	e.CreatedAt = now
	e.UpdatedAt = now
	bucket[k] = e
	return &e, nil
}

func (r *MemoryRepository) UpdateSubmittedEvaluation(_ context.Context, hackathonID, judgeID, teamID int64, scores domain.CriterionScores, comments *string) (*domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.evalBucket(hackathonID)
	k := pairKey{judgeID, teamID}
	existing, ok := bucket[k]
	if !ok {
		return nil, domain.NewNotSubmittedError("no evaluation exists for this team")
	}
	if existing.Status != domain.EvaluationSubmitted {
		return nil, domain.NewNotSubmittedError("evaluation has not been submitted")
	}
	if existing.LockedByAdmin {
		return nil, domain.NewLockedError("evaluation is locked by an administrator")
	}

	existing.Scores = scores
	existing.Comments = comments
	existing.UpdatedAt = time.Now()
	bucket[k] = existing
	return &existing, nil
}

func (r *MemoryRepository) SetEvaluationLock(_ context.Context, hackathonID, judgeID, teamID int64, locked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.evalBucket(hackathonID)
	k := pairKey{judgeID, teamID}
	existing, ok := bucket[k]
	if !ok {
		return domain.NewNotFoundError("evaluation")
	}
	if existing.Status != domain.EvaluationSubmitted {
		return domain.NewNotSubmittedError("only submitted evaluations can be locked")
	}
	existing.LockedByAdmin = locked
	existing.UpdatedAt = time.Now()
	bucket[k] = existing
	return nil
}

// Scoring

func (r *MemoryRepository) ListSubmittedEvaluations(_ context.Context, hackathonID int64) ([]domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var evals []domain.Evaluation
	for _, e := range r.evaluations[hackathonID] {
		if e.Status == domain.EvaluationSubmitted {
			evals = append(evals, e)
		}
	}
	sort.Slice(evals, func(i, j int) bool {
		if evals[i].TeamID != evals[j].TeamID {
			return evals[i].TeamID < evals[j].TeamID
		}
		return evals[i].JudgeID < evals[j].JudgeID
	})
	return evals, nil
}

func (r *MemoryRepository) UpsertAggregates(_ context.Context, hackathonID int64, aggregates []domain.AggregateScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.aggregates[hackathonID] == nil {
		r.aggregates[hackathonID] = make(map[int64]domain.AggregateScore)
	}
	for _, a := range aggregates {
		r.aggregates[hackathonID][a.TeamID] = a
	}
	return nil
}

// Aggregates returns a copy of the stored aggregate rows, for test assertions.
func (r *MemoryRepository) Aggregates(hackathonID int64) []domain.AggregateScore {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]domain.AggregateScore, 0, len(r.aggregates[hackathonID]))
	for _, a := range r.aggregates[hackathonID] {
		rows = append(rows, a)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TeamID < rows[j].TeamID })
	return rows
}

func (r *MemoryRepository) ListVerifiedAggregates(_ context.Context, hackathonID int64) ([]ports.VerifiedAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var aggregates []ports.VerifiedAggregate
	for teamID, a := range r.aggregates[hackathonID] {
		t, ok := r.teams[teamID]
		if !ok || t.VerificationStatus != domain.VerificationVerified {
			continue
		}
		submittedAt := t.CreatedAt
		if t.SubmittedAt != nil {
			submittedAt = *t.SubmittedAt
		}
		aggregates = append(aggregates, ports.VerifiedAggregate{
			TeamID:       teamID,
			AverageScore: a.AverageScore,
			SubmittedAt:  submittedAt,
		})
	}
	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].AverageScore != aggregates[j].AverageScore {
			return aggregates[i].AverageScore > aggregates[j].AverageScore
		}
		return aggregates[i].SubmittedAt.Before(aggregates[j].SubmittedAt)
	})
	return aggregates, nil
}

func (r *MemoryRepository) UpsertLeaderboard(_ context.Context, hackathonID int64, ranked []domain.RankedTeam, computedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.leaderboard[hackathonID] == nil {
		r.leaderboard[hackathonID] = make(map[int64]domain.LeaderboardEntry)
	}
	for _, e := range ranked {
		entry := domain.LeaderboardEntry{
			HackathonID: hackathonID,
			TeamID:      e.TeamID,
			FinalScore:  e.Score,
			Rank:        e.Rank,
			ComputedAt:  computedAt,
		}
		if prev, ok := r.leaderboard[hackathonID][e.TeamID]; ok {
			entry.IsPublished = prev.IsPublished
		}
		if t, ok := r.teams[e.TeamID]; ok {
			entry.TeamName = t.Name
			entry.Category = t.Category
		}
		r.leaderboard[hackathonID][e.TeamID] = entry
	}
	return nil
}

func (r *MemoryRepository) SetLeaderboardPublished(_ context.Context, hackathonID int64, published bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for teamID, e := range r.leaderboard[hackathonID] {
		e.IsPublished = published
		r.leaderboard[hackathonID][teamID] = e
		updated++
	}
	return updated, nil
}

func (r *MemoryRepository) GetTeam(_ context.Context, hackathonID, teamID int64) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok || t.HackathonID != hackathonID {
		return nil, domain.NewNotFoundError("team")
	}
	return &t, nil
}

func (r *MemoryRepository) ListLeaderboard(_ context.Context, hackathonID int64, filter ports.LeaderboardFilter) (*ports.LeaderboardPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []domain.LeaderboardEntry
	for _, e := range r.leaderboard[hackathonID] {
		if filter.PublishedOnly && !e.IsPublished {
			continue
		}
		if filter.NameQuery != "" && !strings.Contains(strings.ToLower(e.TeamName), strings.ToLower(filter.NameQuery)) {
			continue
		}
		if filter.Category != "" && (e.Category == nil || *e.Category != filter.Category) {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rank != entries[j].Rank {
			return entries[i].Rank < entries[j].Rank
		}
		return entries[i].TeamID < entries[j].TeamID
	})

	total := int64(len(entries))
	start := (filter.Page - 1) * filter.PerPage
	if start > len(entries) {
		start = len(entries)
	}
	end := start + filter.PerPage
	if end > len(entries) {
		end = len(entries)
	}

	totalPages := int((total + int64(filter.PerPage) - 1) / int64(filter.PerPage))
	return &ports.LeaderboardPage{
		Entries:    entries[start:end],
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: totalPages,
	}, nil
}
