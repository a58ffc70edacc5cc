package sqlite

import (
	"context"
	"database/sql"

	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/internal/addon/store"
)

var _ store.Submissions = (*submissionsRepo)(nil)

type submissionsRepo struct {
	db dbtx
}

func (r *submissionsRepo) UpsertSubmission(ctx context.Context, rec domain.SubmissionRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO submissions
			(course_id, item_id, attachment_id, user_id, response, points_earned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (course_id, item_id, attachment_id, user_id) DO UPDATE SET
			response = excluded.response,
			points_earned = excluded.points_earned,
			updated_at = excluded.updated_at`,
		rec.Key.CourseID, rec.Key.ItemID, rec.Key.AttachmentID, rec.UserID,
		rec.Response, mapOptionalFloat(rec.PointsEarned),
		rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

func (r *submissionsRepo) GetSubmission(ctx context.Context, key domain.AttachmentKey, userID string) (domain.SubmissionRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT course_id, item_id, attachment_id, user_id, response, points_earned, created_at, updated_at
		FROM submissions
		WHERE course_id = ? AND item_id = ? AND attachment_id = ? AND user_id = ?`,
		key.CourseID, key.ItemID, key.AttachmentID, userID,
	)

	var (
		rec    domain.SubmissionRecord
		points sql.NullFloat64
	)
	err := row.Scan(
		&rec.Key.CourseID, &rec.Key.ItemID, &rec.Key.AttachmentID, &rec.UserID,
		&rec.Response, &points, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return domain.SubmissionRecord{}, mapNotFound(err)
	}
	rec.PointsEarned = mapNullFloatPtr(points)
	return rec, nil
}
