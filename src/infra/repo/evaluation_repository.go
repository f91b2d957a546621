package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hackboard/src/core/domain"
)

const evaluationColumns = `
	evaluation_id, hackathon_id, judge_id, team_id,
	innovation, execution, impact, presentation,
	comments, status, locked_by_admin, submitted_at, created_at, updated_at
`

func scanEvaluation(row pgx.Row) (*domain.Evaluation, error) {
	var e domain.Evaluation
	if err := row.Scan(
		&e.ID, &e.HackathonID, &e.JudgeID, &e.TeamID,
		&e.Scores.Innovation, &e.Scores.Execution, &e.Scores.Impact, &e.Scores.Presentation,
		&e.Comments, &e.Status, &e.LockedByAdmin, &e.SubmittedAt, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRepository) GetEvaluation(ctx context.Context, hackathonID, judgeID, teamID int64) (*domain.Evaluation, error) {
	const q = `
		SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE hackathon_id = $1 AND judge_id = $2 AND team_id = $3
	`
	e, err := scanEvaluation(r.pool.QueryRow(ctx, q, hackathonID, judgeID, teamID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("evaluation")
		}
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) UpsertDraft(ctx context.Context, eval domain.Evaluation) (*domain.Evaluation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const guardQ = `
		SELECT status FROM evaluations
		WHERE hackathon_id = $1 AND judge_id = $2 AND team_id = $3
		FOR UPDATE
	`
	var status domain.EvaluationStatus
	err = tx.QueryRow(ctx, guardQ, eval.HackathonID, eval.JudgeID, eval.TeamID).Scan(&status)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil && status == domain.EvaluationSubmitted {
		return nil, domain.NewAlreadySubmittedError("cannot save draft over a submitted evaluation")
	}

	const q = `
		INSERT INTO evaluations (hackathon_id, judge_id, team_id, innovation, execution, impact, presentation, comments, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'DRAFT')
		ON CONFLICT (hackathon_id, judge_id, team_id)
		DO UPDATE SET
			innovation = EXCLUDED.innovation,
			execution = EXCLUDED.execution,
			impact = EXCLUDED.impact,
			presentation = EXCLUDED.presentation,
			comments = EXCLUDED.comments,
			status = 'DRAFT',
			submitted_at = NULL,
			updated_at = now()
		RETURNING ` + evaluationColumns + `
	`
	e, err := scanEvaluation(tx.QueryRow(ctx, q,
		eval.HackathonID, eval.JudgeID, eval.TeamID,
		eval.Scores.Innovation, eval.Scores.Execution, eval.Scores.Impact, eval.Scores.Presentation,
		eval.Comments,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) SubmitEvaluation(ctx context.Context, eval domain.Evaluation) (*domain.Evaluation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const guardQ = `
		SELECT status FROM evaluations
		WHERE hackathon_id = $1 AND judge_id = $2 AND team_id = $3
		FOR UPDATE
	`
	var status domain.EvaluationStatus
	err = tx.QueryRow(ctx, guardQ, eval.HackathonID, eval.JudgeID, eval.TeamID).Scan(&status)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil && status == domain.EvaluationSubmitted {
		return nil, domain.NewAlreadySubmittedError("final evaluation already submitted for this team")
	}

	now := time.Now()
	const q = `
		INSERT INTO evaluations (hackathon_id, judge_id, team_id, innovation, execution, impact, presentation, comments, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'SUBMITTED', $9)
		ON CONFLICT (hackathon_id, judge_id, team_id)
		DO UPDATE SET
			innovation = EXCLUDED.innovation,
			execution = EXCLUDED.execution,
			impact = EXCLUDED.impact,
			presentation = EXCLUDED.presentation,
			comments = EXCLUDED.comments,
			status = 'SUBMITTED',
			submitted_at = EXCLUDED.submitted_at,
			updated_at = now()
		RETURNING ` + evaluationColumns + `
	`
	e, err := scanEvaluation(tx.QueryRow(ctx, q,
		eval.HackathonID, eval.JudgeID, eval.TeamID,
		eval.Scores.Innovation, eval.Scores.Execution, eval.Scores.Impact, eval.Scores.Presentation,
		eval.Comments, now,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) UpdateSubmittedEvaluation(ctx context.Context, hackathonID, judgeID, teamID int64, scores domain.CriterionScores, comments *string) (*domain.Evaluation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const guardQ = `
		SELECT status, locked_by_admin FROM evaluations
		WHERE hackathon_id = $1 AND judge_id = $2 AND team_id = $3
		FOR UPDATE
	`
	var status domain.EvaluationStatus
	var locked bool
	if err := tx.QueryRow(ctx, guardQ, hackathonID, judgeID, teamID).Scan(&status, &locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotSubmittedError("no evaluation exists for this team")
		}
		return nil, err
	}
	if status != domain.EvaluationSubmitted {
		return nil, domain.NewNotSubmittedError("evaluation has not been submitted")
	}
	if locked {
		return nil, domain.NewLockedError("evaluation is locked by an administrator")
	}

	// Scores and comments only; status and submitted_at stay untouched.
	const q = `
		UPDATE evaluations
		SET innovation = $4, execution = $5, impact = $6, presentation = $7, comments = $8, updated_at = now()
		WHERE hackathon_id = $1 AND judge_id = $2 AND team_id = $3
		RETURNING ` + evaluationColumns + `
	`
	e, err := scanEvaluation(tx.QueryRow(ctx, q,
		hackathonID, judgeID, teamID,
		scores.Innovation, scores.Execution, scores.Impact, scores.Presentation, comments,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) SetEvaluationLock(ctx context.Context, hackathonID, judgeID, teamID int64, locked bool) error {
	const q = `
		UPDATE evaluations
		SET locked_by_admin = $4, updated_at = now()
		WHERE hackathon_id = $1 AND judge_id = $2 AND team_id = $3 AND status = 'SUBMITTED'
	`
	res, err := r.pool.Exec(ctx, q, hackathonID, judgeID, teamID, locked)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		// Distinguish missing row from a draft that cannot be locked.
		const existsQ = `
			SELECT EXISTS (
				SELECT 1 FROM evaluations
				WHERE hackathon_id = $1 AND judge_id = $2 AND team_id = $3
			)
		`
		var exists bool
		if err := r.pool.QueryRow(ctx, existsQ, hackathonID, judgeID, teamID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return domain.NewNotSubmittedError("only submitted evaluations can be locked")
		}
		return domain.NewNotFoundError("evaluation")
	}
	return nil
}
