package ports

// CoreMetrics counts the operations worth watching in production. The
// prometheus-backed implementation lives in src/infra/metrics; a no-op
// implementation is available for tests.
type CoreMetrics interface {
	EvaluationSubmitted()
	AggregationRun()
	AggregationFailure()
	RebalanceRun()
	LeaderboardComputed()
}
