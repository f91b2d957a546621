package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
)

func (r *PostgresRepository) GetTeam(ctx context.Context, hackathonID, teamID int64) (*domain.Team, error) {
	const q = `
		SELECT team_id, hackathon_id, name, category, verification_status, submitted_at, created_at
		FROM teams
		WHERE hackathon_id = $1 AND team_id = $2
	`
	var t domain.Team
	if err := r.pool.QueryRow(ctx, q, hackathonID, teamID).Scan(
		&t.ID, &t.HackathonID, &t.Name, &t.Category, &t.VerificationStatus, &t.SubmittedAt, &t.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("team")
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) ListSubmittedEvaluations(ctx context.Context, hackathonID int64) ([]domain.Evaluation, error) {
	const q = `
		SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE hackathon_id = $1 AND status = 'SUBMITTED'
		ORDER BY team_id ASC, judge_id ASC
	`
	rows, err := r.pool.Query(ctx, q, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []domain.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, *e)
	}
	return evals, rows.Err()
}

func (r *PostgresRepository) UpsertAggregates(ctx context.Context, hackathonID int64, aggregates []domain.AggregateScore) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO aggregate_scores (hackathon_id, team_id, average_score, review_count, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (hackathon_id, team_id)
		DO UPDATE SET
			average_score = EXCLUDED.average_score,
			review_count = EXCLUDED.review_count,
			computed_at = EXCLUDED.computed_at
	`
	for _, a := range aggregates {
		if _, err := tx.Exec(ctx, q, hackathonID, a.TeamID, a.AverageScore, a.ReviewCount, a.ComputedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) ListVerifiedAggregates(ctx context.Context, hackathonID int64) ([]ports.VerifiedAggregate, error) {
	const q = `
		SELECT ag.team_id, ag.average_score, COALESCE(t.submitted_at, t.created_at)
		FROM aggregate_scores ag
		JOIN teams t ON t.team_id = ag.team_id AND t.hackathon_id = ag.hackathon_id
		WHERE ag.hackathon_id = $1 AND t.verification_status = 'VERIFIED'
		ORDER BY ag.average_score DESC, COALESCE(t.submitted_at, t.created_at) ASC
	`
	rows, err := r.pool.Query(ctx, q, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []ports.VerifiedAggregate
	for rows.Next() {
		var a ports.VerifiedAggregate
		if err := rows.Scan(&a.TeamID, &a.AverageScore, &a.SubmittedAt); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, a)
	}
	return aggregates, rows.Err()
}

func (r *PostgresRepository) UpsertLeaderboard(ctx context.Context, hackathonID int64, ranked []domain.RankedTeam, computedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// is_published is deliberately absent from the update set: computing a
	// leaderboard never implicitly unpublishes it.
	const q = `
		INSERT INTO leaderboard_entries (hackathon_id, team_id, final_score, rank, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (hackathon_id, team_id)
		DO UPDATE SET
			final_score = EXCLUDED.final_score,
			rank = EXCLUDED.rank,
			computed_at = EXCLUDED.computed_at
	`
	for _, e := range ranked {
		if _, err := tx.Exec(ctx, q, hackathonID, e.TeamID, e.Score, e.Rank, computedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) SetLeaderboardPublished(ctx context.Context, hackathonID int64, published bool) (int64, error) {
	const q = `UPDATE leaderboard_entries SET is_published = $2 WHERE hackathon_id = $1`
	res, err := r.pool.Exec(ctx, q, hackathonID, published)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *PostgresRepository) ListLeaderboard(ctx context.Context, hackathonID int64, filter ports.LeaderboardFilter) (*ports.LeaderboardPage, error) {
	const baseWhere = `
		WHERE le.hackathon_id = $1
			AND ($2 = '' OR t.name ILIKE '%' || $2 || '%')
			AND ($3 = '' OR t.category = $3)
			AND (NOT $4::boolean OR le.is_published)
	`

	const countQ = `
		SELECT COUNT(*)
		FROM leaderboard_entries le
		JOIN teams t ON t.team_id = le.team_id AND t.hackathon_id = le.hackathon_id
	` + baseWhere

	var total int64
	if err := r.pool.QueryRow(ctx, countQ, hackathonID, filter.NameQuery, filter.Category, filter.PublishedOnly).Scan(&total); err != nil {
		return nil, err
	}

	const listQ = `
		SELECT le.hackathon_id, le.team_id, t.name, t.category, le.final_score, le.rank, le.is_published, le.computed_at
		FROM leaderboard_entries le
		JOIN teams t ON t.team_id = le.team_id AND t.hackathon_id = le.hackathon_id
	` + baseWhere + `
		ORDER BY le.rank ASC, le.team_id ASC
		LIMIT $5 OFFSET $6
	`
	offset := (filter.Page - 1) * filter.PerPage
	rows, err := r.pool.Query(ctx, listQ, hackathonID, filter.NameQuery, filter.Category, filter.PublishedOnly, filter.PerPage, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, filter.PerPage)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.HackathonID, &e.TeamID, &e.TeamName, &e.Category, &e.FinalScore, &e.Rank, &e.IsPublished, &e.ComputedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.PerPage) - 1) / int64(filter.PerPage))
	return &ports.LeaderboardPage{
		Entries:    entries,
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: totalPages,
	}, nil
}
