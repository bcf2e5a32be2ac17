package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/logging"
	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// ScoreRepository persists and queries score history.
type ScoreRepository interface {
	Save(ctx context.Context, rec analysis.ScoreRecord) error
	ListByLearner(ctx context.Context, learnerID string, limit int) ([]analysis.ScoreRecord, error)
	AverageScore(ctx context.Context, learnerID string) (float64, error)
}

type scoreRepo struct {
	conn *Connection
	log  logging.Logger
}

func NewScoreRepository(conn *Connection, log logging.Logger) ScoreRepository {
	return &scoreRepo{conn: conn, log: log}
}

func (r *scoreRepo) Save(ctx context.Context, rec analysis.ScoreRecord) error {
	if rec.SubmissionID == "" {
		rec.SubmissionID = uuid.NewString()
	}
	counts, err := json.Marshal(rec.IssueCounts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode issue counts")
	}
	query := `
		INSERT INTO score_records (
			submission_id, learner_id, score, issue_counts, fluency, sentiment, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (submission_id) DO NOTHING
	`
	_, err = r.conn.pool.Exec(ctx, query,
		rec.SubmissionID, rec.LearnerID, rec.Score, counts, rec.Fluency, string(rec.Sentiment), rec.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeScorePersistError, "failed to save score record")
	}
	return nil
}

func (r *scoreRepo) ListByLearner(ctx context.Context, learnerID string, limit int) ([]analysis.ScoreRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT submission_id, learner_id, score, issue_counts, fluency, sentiment, created_at
		FROM score_records
		WHERE learner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.conn.pool.Query(ctx, query, learnerID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query score records")
	}
	defer rows.Close()

	var records []analysis.ScoreRecord
	for rows.Next() {
		var rec analysis.ScoreRecord
		var counts []byte
		var sentiment string
		if err := rows.Scan(&rec.SubmissionID, &rec.LearnerID, &rec.Score, &counts,
			&rec.Fluency, &sentiment, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan score record")
		}
		rec.Sentiment = analysis.SentimentLabel(sentiment)
		if len(counts) > 0 {
			if err := json.Unmarshal(counts, &rec.IssueCounts); err != nil {
				r.log.Warn("corrupt issue counts in score record",
					logging.String("submission_id", rec.SubmissionID), logging.Err(err))
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read score records")
	}
	return records, nil
}

func (r *scoreRepo) AverageScore(ctx context.Context, learnerID string) (float64, error) {
	// AVG over zero rows yields NULL, not ErrNoRows.
	var avg *float64
	err := r.conn.pool.QueryRow(ctx,
		`SELECT AVG(score) FROM score_records WHERE learner_id = $1`, learnerID,
	).Scan(&avg)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to compute average score")
	}
	if avg == nil {
		return 0, errors.NotFound("no score records for learner")
	}
	return *avg, nil
}
