package usecase_test

import (
	"context"
	"sync"
	"time"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
	"hackboard/src/core/usecase"
	"hackboard/src/infra/collab"
	"hackboard/src/infra/logger"
	"hackboard/src/infra/metrics"
	"hackboard/src/infra/repo"
)

// fixture bundles the services under test over a shared in-memory store.
type fixture struct {
	repo     *repo.MemoryRepository
	notifier *captureNotifier

	assignments *usecase.AssignmentService
	evaluations *usecase.EvaluationService
	scoring     *usecase.ScoringService
}

func newFixture() *fixture {
	store := repo.NewMemoryRepository()
	log := logger.Discard()
	notifier := &captureNotifier{}
	m := metrics.Nop{}

	scoring := usecase.NewScoringService(store, notifier, m, log)
	evaluations := usecase.NewEvaluationService(store, collab.NewSubmissionStatus(store), notifier, m, log)

	return &fixture{
		repo:        store,
		notifier:    notifier,
		assignments: usecase.NewAssignmentService(store, m, log),
		evaluations: evaluations,
		scoring:     scoring,
	}
}

// seedTeam creates a finalized, verified team in the given hackathon.
func (f *fixture) seedTeam(hackathonID int64, name string) int64 {
	submitted := time.Now().Add(-time.Hour)
	return f.repo.SeedTeam(domain.Team{
		HackathonID:        hackathonID,
		Name:               name,
		VerificationStatus: domain.VerificationVerified,
		SubmittedAt:        &submitted,
	})
}

// seedJudge creates an active judge and adds it to the hackathon's pool.
func (f *fixture) seedJudge(hackathonID int64, name string) int64 {
	id := f.repo.SeedJudge(name, true)
	f.repo.AddToPool(hackathonID, id)
	return id
}

func ptrNow() *time.Time {
	now := time.Now()
	return &now
}

// captureNotifier records delivered notifications for assertions.
type captureNotifier struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (n *captureNotifier) Notify(_ context.Context, notification ports.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *captureNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.Event
	}
	return out
}

// blockingAggregator lets tests observe the background recompute trigger.
type blockingAggregator struct {
	mu    sync.Mutex
	calls []int64
	done  chan struct{}
}

func newBlockingAggregator() *blockingAggregator {
	return &blockingAggregator{done: make(chan struct{}, 8)}
}

func (a *blockingAggregator) Aggregate(_ context.Context, hackathonID int64) (int, error) {
	a.mu.Lock()
	a.calls = append(a.calls, hackathonID)
	a.mu.Unlock()
	a.done <- struct{}{}
	return 0, nil
}

func (a *blockingAggregator) wait(timeout time.Duration) bool {
	select {
	case <-a.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
