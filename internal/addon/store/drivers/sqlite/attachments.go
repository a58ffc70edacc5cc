package sqlite

import (
	"context"

	"github.com/campusware/edukit/internal/addon/domain"
)

type attachmentsRepo struct {
	db dbtx
}

func (r *attachmentsRepo) UpsertAttachment(ctx context.Context, rec domain.AttachmentRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attachments
			(course_id, item_id, attachment_id, title, prompt, expected_answer, max_points, teacher_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (course_id, item_id, attachment_id) DO UPDATE SET
			title = excluded.title,
			prompt = excluded.prompt,
			expected_answer = excluded.expected_answer,
			max_points = excluded.max_points,
			teacher_id = excluded.teacher_id,
			updated_at = excluded.updated_at`,
		rec.Key.CourseID, rec.Key.ItemID, rec.Key.AttachmentID,
		rec.Title, rec.Prompt, rec.ExpectedAnswer, rec.MaxPoints, rec.TeacherID,
		rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

func (r *attachmentsRepo) GetAttachment(ctx context.Context, key domain.AttachmentKey) (domain.AttachmentRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT course_id, item_id, attachment_id, title, prompt, expected_answer, max_points, teacher_id, created_at, updated_at
		FROM attachments
		WHERE course_id = ? AND item_id = ? AND attachment_id = ?`,
		key.CourseID, key.ItemID, key.AttachmentID,
	)

	var rec domain.AttachmentRecord
	err := row.Scan(
		&rec.Key.CourseID, &rec.Key.ItemID, &rec.Key.AttachmentID,
		&rec.Title, &rec.Prompt, &rec.ExpectedAnswer, &rec.MaxPoints, &rec.TeacherID,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return domain.AttachmentRecord{}, mapNotFound(err)
	}
	return rec, nil
}
