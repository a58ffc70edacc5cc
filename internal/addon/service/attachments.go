package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/campusware/edukit/internal/addon/classroom"
	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/internal/addon/store"
	"github.com/campusware/edukit/pkg/slogx"
)

var (
	// ErrForbidden is returned when the session's verified role does not
	// permit the operation. No state is touched when it is returned.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when nothing is stored under the requested
	// key. Distinct from ErrForbidden so handlers can render an empty view
	// instead of an error.
	ErrNotFound = errors.New("not_found")
)

// HostClient is the slice of the Classroom add-on API the attachment
// service uses. *classroom.Client implements it; tests substitute a fake.
type HostClient interface {
	CreateAttachment(ctx context.Context, courseID, itemID, addOnToken string, att classroom.Attachment, teacherViewURI, studentViewURI, reviewURI string) (classroom.Attachment, error)
	PatchSubmissionGrade(ctx context.Context, courseID, itemID, attachmentID, submissionID string, points float64) error
}

// HostClientFactory builds a HostClient bound to one user's token source.
type HostClientFactory func(ctx context.Context, ts oauth2.TokenSource) (HostClient, error)

// ClassroomHostFactory returns the production factory. A non-empty endpoint
// aims the client at a fake host for tests.
func ClassroomHostFactory(endpoint string) HostClientFactory {
	return func(ctx context.Context, ts oauth2.TokenSource) (HostClient, error) {
		var opts []classroom.Option
		if endpoint != "" {
			opts = append(opts, classroom.WithEndpoint(endpoint))
		}
		return classroom.New(ctx, ts, opts...)
	}
}

// AttachmentDraft is the teacher-authored content for an attachment.
type AttachmentDraft struct {
	Title          string
	Prompt         string
	ExpectedAnswer string
	MaxPoints      float64
}

// AttachmentService owns the per-attachment state: the shared
// teacher-authored record and each student's submission. All writes are
// gated on the verified role from the launch context, and the gate runs
// before any store access so a forbidden call leaves no trace.
type AttachmentService struct {
	Store         store.Store
	Credentials   *CredentialService
	NewHostClient HostClientFactory

	// BaseURL is the public origin the host embeds, used to build the view
	// URIs registered with new attachments.
	BaseURL string
}

// Record returns the shared attachment record for the launch key.
func (s *AttachmentService) Record(ctx context.Context, lc domain.LaunchContext) (domain.AttachmentRecord, error) {
	rec, err := s.Store.Attachments().GetAttachment(ctx, lc.Key())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AttachmentRecord{}, ErrNotFound
		}
		return domain.AttachmentRecord{}, err
	}
	return rec, nil
}

// PutRecord writes the shared attachment record. Teacher role only.
func (s *AttachmentService) PutRecord(ctx context.Context, lc domain.LaunchContext, draft AttachmentDraft) (domain.AttachmentRecord, error) {
	if lc.Role != domain.RoleTeacher {
		return domain.AttachmentRecord{}, ErrForbidden
	}

	now := time.Now().UTC()
	rec := domain.AttachmentRecord{
		Key:            lc.Key(),
		Title:          draft.Title,
		Prompt:         draft.Prompt,
		ExpectedAnswer: draft.ExpectedAnswer,
		MaxPoints:      draft.MaxPoints,
		TeacherID:      lc.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Keep the original creation time and creator on rewrite.
	if prev, err := s.Store.Attachments().GetAttachment(ctx, rec.Key); err == nil {
		rec.CreatedAt = prev.CreatedAt
		if prev.TeacherID != "" {
			rec.TeacherID = prev.TeacherID
		}
	}

	if err := s.Store.Attachments().UpsertAttachment(ctx, rec); err != nil {
		return domain.AttachmentRecord{}, err
	}
	return rec, nil
}

// CreateAttachment registers a new attachment with the host under the
// teacher's own credential and stores the authored record under the
// host-assigned attachment ID. Teacher role only.
func (s *AttachmentService) CreateAttachment(ctx context.Context, session domain.Session, lc domain.LaunchContext, addOnToken string, draft AttachmentDraft) (domain.AttachmentRecord, error) {
	if lc.Role != domain.RoleTeacher {
		return domain.AttachmentRecord{}, ErrForbidden
	}

	ts, err := s.Credentials.TokenSource(ctx, session)
	if err != nil {
		return domain.AttachmentRecord{}, err
	}
	client, err := s.NewHostClient(ctx, ts)
	if err != nil {
		return domain.AttachmentRecord{}, err
	}

	base := strings.TrimRight(s.BaseURL, "/")
	hostAtt, err := client.CreateAttachment(ctx, lc.CourseID, lc.ItemID, addOnToken,
		classroom.Attachment{Title: draft.Title, MaxPoints: draft.MaxPoints},
		base+"/addon/teacher-view",
		base+"/addon/student-view",
		base+"/addon/review",
	)
	if err != nil {
		return domain.AttachmentRecord{}, err
	}

	now := time.Now().UTC()
	rec := domain.AttachmentRecord{
		Key: domain.AttachmentKey{
			CourseID:     lc.CourseID,
			ItemID:       lc.ItemID,
			AttachmentID: hostAtt.ID,
		},
		Title:          draft.Title,
		Prompt:         draft.Prompt,
		ExpectedAnswer: draft.ExpectedAnswer,
		MaxPoints:      draft.MaxPoints,
		TeacherID:      lc.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Store.Attachments().UpsertAttachment(ctx, rec); err != nil {
		return domain.AttachmentRecord{}, err
	}
	return rec, nil
}

// Submission returns the launching student's own stored response.
func (s *AttachmentService) Submission(ctx context.Context, lc domain.LaunchContext) (domain.SubmissionRecord, error) {
	if lc.Role != domain.RoleStudent {
		return domain.SubmissionRecord{}, ErrForbidden
	}
	return s.submission(ctx, lc.Key(), lc.UserID)
}

// PutSubmission stores the student's response, grades it against the
// attachment's expected answer, and passes the grade back to the host
// under the attachment creator's stored credential. Student role only;
// last write wins. Passback is best effort and never fails the write.
func (s *AttachmentService) PutSubmission(ctx context.Context, lc domain.LaunchContext, response string) (domain.SubmissionRecord, error) {
	if lc.Role != domain.RoleStudent {
		return domain.SubmissionRecord{}, ErrForbidden
	}

	att, err := s.Store.Attachments().GetAttachment(ctx, lc.Key())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.SubmissionRecord{}, ErrNotFound
		}
		return domain.SubmissionRecord{}, err
	}

	points := gradeResponse(att, response)
	now := time.Now().UTC()
	rec := domain.SubmissionRecord{
		Key:          lc.Key(),
		UserID:       lc.UserID,
		Response:     response,
		PointsEarned: &points,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if prev, err := s.submission(ctx, rec.Key, rec.UserID); err == nil {
		rec.CreatedAt = prev.CreatedAt
	}

	if err := s.Store.Submissions().UpsertSubmission(ctx, rec); err != nil {
		return domain.SubmissionRecord{}, err
	}

	s.passBackGrade(ctx, att, lc, points)
	return rec, nil
}

// ReviewSubmission returns one student's stored response for the work
// review view. Teacher role only.
func (s *AttachmentService) ReviewSubmission(ctx context.Context, lc domain.LaunchContext, studentID string) (domain.SubmissionRecord, error) {
	if lc.Role != domain.RoleTeacher {
		return domain.SubmissionRecord{}, ErrForbidden
	}
	return s.submission(ctx, lc.Key(), studentID)
}

func (s *AttachmentService) submission(ctx context.Context, key domain.AttachmentKey, userID string) (domain.SubmissionRecord, error) {
	rec, err := s.Store.Submissions().GetSubmission(ctx, key, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.SubmissionRecord{}, ErrNotFound
		}
		return domain.SubmissionRecord{}, err
	}
	return rec, nil
}

// passBackGrade patches pointsEarned on the host submission using the
// attachment creator's stored refresh token. Only teachers may set grades,
// which is why the student's own credential is never used here.
func (s *AttachmentService) passBackGrade(ctx context.Context, att domain.AttachmentRecord, lc domain.LaunchContext, points float64) {
	log := slogx.FromContext(ctx)

	if lc.SubmissionID == "" || att.TeacherID == "" {
		return
	}

	ts, err := s.Credentials.UserTokenSource(ctx, att.TeacherID)
	if err != nil {
		log.Warn("grade passback skipped, no teacher credential",
			"teacher_id", att.TeacherID, "error", err)
		return
	}
	client, err := s.NewHostClient(ctx, ts)
	if err != nil {
		log.Warn("grade passback skipped", "error", err)
		return
	}

	err = client.PatchSubmissionGrade(ctx, lc.CourseID, lc.ItemID, lc.AttachmentID, lc.SubmissionID, points)
	if err != nil {
		log.Warn("grade passback failed",
			"submission_id", lc.SubmissionID, "error", err)
		return
	}
	log.Info("grade passed back",
		"submission_id", lc.SubmissionID, "points", points)
}

func gradeResponse(att domain.AttachmentRecord, response string) float64 {
	if strings.EqualFold(strings.TrimSpace(response), strings.TrimSpace(att.ExpectedAnswer)) {
		return att.MaxPoints
	}
	return 0
}
