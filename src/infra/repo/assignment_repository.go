package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hackboard/src/core/domain"
	"hackboard/src/core/ports"
)

func (r *PostgresRepository) CreateAssignments(ctx context.Context, hackathonID int64, pairs []ports.AssignmentPair) ([]domain.Assignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO judge_assignments (hackathon_id, judge_id, team_id)
		VALUES ($1, $2, $3)
		RETURNING assignment_id, hackathon_id, judge_id, team_id, created_at
	`
	created := make([]domain.Assignment, 0, len(pairs))
	for _, p := range pairs {
		var a domain.Assignment
		if err := tx.QueryRow(ctx, q, hackathonID, p.JudgeID, p.TeamID).Scan(
			&a.ID, &a.HackathonID, &a.JudgeID, &a.TeamID, &a.CreatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return nil, domain.NewConflictError("judge already assigned to team")
			}
			return nil, err
		}
		created = append(created, a)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) ReassignTeam(ctx context.Context, hackathonID, teamID, fromJudgeID, toJudgeID int64) (*domain.Assignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const deleteQ = `
		DELETE FROM judge_assignments
		WHERE hackathon_id = $1 AND judge_id = $2 AND team_id = $3
	`
	res, err := tx.Exec(ctx, deleteQ, hackathonID, fromJudgeID, teamID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, domain.NewNotFoundError("assignment")
	}

	const insertQ = `
		INSERT INTO judge_assignments (hackathon_id, judge_id, team_id)
		VALUES ($1, $2, $3)
		RETURNING assignment_id, hackathon_id, judge_id, team_id, created_at
	`
	var a domain.Assignment
	if err := tx.QueryRow(ctx, insertQ, hackathonID, toJudgeID, teamID).Scan(
		&a.ID, &a.HackathonID, &a.JudgeID, &a.TeamID, &a.CreatedAt,
	); err != nil {
		// Rollback restores the deleted source row, so a conflicting target
		// never leaves the team unassigned.
		if isUniqueViolation(err) {
			return nil, domain.NewConflictError("target judge already assigned to team")
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) GetAssignment(ctx context.Context, hackathonID, judgeID, teamID int64) (*domain.Assignment, error) {
	const q = `
		SELECT assignment_id, hackathon_id, judge_id, team_id, created_at
		FROM judge_assignments
		WHERE hackathon_id = $1 AND judge_id = $2 AND team_id = $3
	`
	var a domain.Assignment
	if err := r.pool.QueryRow(ctx, q, hackathonID, judgeID, teamID).Scan(
		&a.ID, &a.HackathonID, &a.JudgeID, &a.TeamID, &a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("assignment")
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) DeleteAssignmentsByTeam(ctx context.Context, hackathonID, teamID int64) (int64, error) {
	const q = `DELETE FROM judge_assignments WHERE hackathon_id = $1 AND team_id = $2`
	res, err := r.pool.Exec(ctx, q, hackathonID, teamID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *PostgresRepository) DeleteAssignmentsByJudge(ctx context.Context, hackathonID, judgeID int64) (int64, error) {
	const q = `DELETE FROM judge_assignments WHERE hackathon_id = $1 AND judge_id = $2`
	res, err := r.pool.Exec(ctx, q, hackathonID, judgeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *PostgresRepository) ListPoolJudges(ctx context.Context, hackathonID int64) ([]domain.Judge, error) {
	const q = `
		SELECT j.judge_id, j.display_name, j.active, j.created_at
		FROM judge_pool jp
		JOIN judges j ON j.judge_id = jp.judge_id
		WHERE jp.hackathon_id = $1 AND j.active
		ORDER BY j.judge_id ASC
	`
	rows, err := r.pool.Query(ctx, q, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var judges []domain.Judge
	for rows.Next() {
		var j domain.Judge
		if err := rows.Scan(&j.ID, &j.DisplayName, &j.Active, &j.CreatedAt); err != nil {
			return nil, err
		}
		judges = append(judges, j)
	}
	return judges, rows.Err()
}

func (r *PostgresRepository) IsPoolJudge(ctx context.Context, hackathonID, judgeID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM judge_pool jp
			JOIN judges j ON j.judge_id = jp.judge_id
			WHERE jp.hackathon_id = $1 AND jp.judge_id = $2 AND j.active
		)
	`
	var ok bool
	if err := r.pool.QueryRow(ctx, q, hackathonID, judgeID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *PostgresRepository) ListAssignmentStatuses(ctx context.Context, hackathonID int64) ([]ports.AssignmentStatus, error) {
	const q = `
		SELECT a.judge_id, a.team_id, COALESCE(e.status, 'NONE')
		FROM judge_assignments a
		LEFT JOIN evaluations e
			ON e.hackathon_id = a.hackathon_id
			AND e.judge_id = a.judge_id
			AND e.team_id = a.team_id
		WHERE a.hackathon_id = $1
		ORDER BY a.judge_id ASC, a.team_id ASC
	`
	rows, err := r.pool.Query(ctx, q, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []ports.AssignmentStatus
	for rows.Next() {
		var s ports.AssignmentStatus
		if err := rows.Scan(&s.JudgeID, &s.TeamID, &s.EvaluationStatus); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *PostgresRepository) ApplyRebalance(ctx context.Context, hackathonID int64, movableTeamIDs []int64, plan []domain.AssignmentRef) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Clear only the movable rows; frozen assignments keep their ids.
	const deleteQ = `
		DELETE FROM judge_assignments a
		WHERE a.hackathon_id = $1
			AND a.team_id = ANY($2)
			AND NOT EXISTS (
				SELECT 1 FROM evaluations e
				WHERE e.hackathon_id = a.hackathon_id
					AND e.judge_id = a.judge_id
					AND e.team_id = a.team_id
					AND e.status = 'SUBMITTED'
			)
	`
	if _, err := tx.Exec(ctx, deleteQ, hackathonID, movableTeamIDs); err != nil {
		return err
	}

	const insertQ = `
		INSERT INTO judge_assignments (hackathon_id, judge_id, team_id)
		VALUES ($1, $2, $3)
	`
	for _, p := range plan {
		if _, err := tx.Exec(ctx, insertQ, hackathonID, p.JudgeID, p.TeamID); err != nil {
			if isUniqueViolation(err) {
				return domain.NewConflictError("concurrent assignment change during rebalance")
			}
			return err
		}
	}

	return tx.Commit(ctx)
}
