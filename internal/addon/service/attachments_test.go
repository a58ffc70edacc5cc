package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/oauth2"

	"github.com/stretchr/testify/require"

	"github.com/campusware/edukit/internal/addon/classroom"
	"github.com/campusware/edukit/internal/addon/domain"
)

type gradeCall struct {
	CourseID     string
	ItemID       string
	AttachmentID string
	SubmissionID string
	Points       float64
}

// fakeHostClient records host calls instead of talking to Classroom.
type fakeHostClient struct {
	mu        sync.Mutex
	nextID    string
	createErr error
	patchErr  error

	created []classroom.Attachment
	grades  []gradeCall
}

func (f *fakeHostClient) CreateAttachment(ctx context.Context, courseID, itemID, addOnToken string, att classroom.Attachment, teacherViewURI, studentViewURI, reviewURI string) (classroom.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return classroom.Attachment{}, f.createErr
	}
	att.ID = f.nextID
	f.created = append(f.created, att)
	return att, nil
}

func (f *fakeHostClient) PatchSubmissionGrade(ctx context.Context, courseID, itemID, attachmentID, submissionID string, points float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchErr != nil {
		return f.patchErr
	}
	f.grades = append(f.grades, gradeCall{courseID, itemID, attachmentID, submissionID, points})
	return nil
}

func newAttachmentEnv(t *testing.T) (*testEnv, *AttachmentService, *fakeHostClient) {
	t.Helper()

	env := newTestEnv(t)
	host := &fakeHostClient{nextID: "attachment-1"}
	svc := &AttachmentService{
		Store:       env.st,
		Credentials: env.creds,
		NewHostClient: func(ctx context.Context, ts oauth2.TokenSource) (HostClient, error) {
			return host, nil
		},
		BaseURL: "https://addon.example.com",
	}
	return env, svc, host
}

func teacherLaunch() domain.LaunchContext {
	return domain.LaunchContext{
		CourseID:     "course-1",
		ItemID:       "item-1",
		AttachmentID: "attachment-1",
		Role:         domain.RoleTeacher,
		UserID:       "user-1",
	}
}

func studentLaunch(userID string) domain.LaunchContext {
	return domain.LaunchContext{
		CourseID:     "course-1",
		ItemID:       "item-1",
		AttachmentID: "attachment-1",
		SubmissionID: "sub-1",
		Role:         domain.RoleStudent,
		UserID:       userID,
	}
}

func quizDraft() AttachmentDraft {
	return AttachmentDraft{
		Title:          "Capitals quiz",
		Prompt:         "What is the capital of France?",
		ExpectedAnswer: "Paris",
		MaxPoints:      100,
	}
}

func TestPutRecord(t *testing.T) {
	t.Parallel()

	t.Run("teacher writes, anyone on the key reads", func(t *testing.T) {
		_, svc, _ := newAttachmentEnv(t)
		ctx := context.Background()

		rec, err := svc.PutRecord(ctx, teacherLaunch(), quizDraft())
		require.NoError(t, err)
		require.Equal(t, "user-1", rec.TeacherID)

		got, err := svc.Record(ctx, studentLaunch("student-1"))
		require.NoError(t, err)
		require.Equal(t, "Capitals quiz", got.Title)
		require.Equal(t, "What is the capital of France?", got.Prompt)
	})

	t.Run("student writes are forbidden and leave no state", func(t *testing.T) {
		_, svc, _ := newAttachmentEnv(t)
		ctx := context.Background()

		_, err := svc.PutRecord(ctx, studentLaunch("student-1"), quizDraft())
		require.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Record(ctx, teacherLaunch())
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rewrite keeps creator and creation time", func(t *testing.T) {
		_, svc, _ := newAttachmentEnv(t)
		ctx := context.Background()

		first, err := svc.PutRecord(ctx, teacherLaunch(), quizDraft())
		require.NoError(t, err)

		other := teacherLaunch()
		other.UserID = "user-2"
		draft := quizDraft()
		draft.Title = "Capitals quiz v2"
		second, err := svc.PutRecord(ctx, other, draft)
		require.NoError(t, err)

		require.Equal(t, "Capitals quiz v2", second.Title)
		require.Equal(t, first.TeacherID, second.TeacherID)
		require.Equal(t, first.CreatedAt, second.CreatedAt)
	})

	t.Run("unknown key reads as not found", func(t *testing.T) {
		_, svc, _ := newAttachmentEnv(t)

		lc := teacherLaunch()
		lc.AttachmentID = "other"
		_, err := svc.Record(context.Background(), lc)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateAttachment(t *testing.T) {
	t.Parallel()

	t.Run("registers with the host and stores under the host id", func(t *testing.T) {
		env, svc, host := newAttachmentEnv(t)
		ctx := context.Background()
		sess := env.authorize(t, env.establishSession(t))

		lc := teacherLaunch()
		lc.AttachmentID = ""
		rec, err := svc.CreateAttachment(ctx, sess, lc, "addon-token", quizDraft())
		require.NoError(t, err)
		require.Equal(t, "attachment-1", rec.Key.AttachmentID)
		require.Len(t, host.created, 1)
		require.Equal(t, "Capitals quiz", host.created[0].Title)

		got, err := svc.Record(ctx, teacherLaunch())
		require.NoError(t, err)
		require.Equal(t, rec.Key, got.Key)
	})

	t.Run("students cannot create and the host is never called", func(t *testing.T) {
		env, svc, host := newAttachmentEnv(t)
		sess := env.authorize(t, env.establishSession(t))

		lc := studentLaunch("student-1")
		lc.AttachmentID = ""
		_, err := svc.CreateAttachment(context.Background(), sess, lc, "addon-token", quizDraft())
		require.ErrorIs(t, err, ErrForbidden)
		require.Empty(t, host.created)
	})

	t.Run("host rejection surfaces and stores nothing", func(t *testing.T) {
		env, svc, host := newAttachmentEnv(t)
		ctx := context.Background()
		sess := env.authorize(t, env.establishSession(t))
		host.createErr = errors.New("host says no")

		lc := teacherLaunch()
		lc.AttachmentID = ""
		_, err := svc.CreateAttachment(ctx, sess, lc, "addon-token", quizDraft())
		require.Error(t, err)

		_, err = svc.Record(ctx, teacherLaunch())
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSubmissions(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) (*testEnv, *AttachmentService, *fakeHostClient) {
		t.Helper()
		env, svc, host := newAttachmentEnv(t)
		// The attachment creator must exist with a stored refresh token for
		// grade passback, which authorize provides as user-1.
		_ = env.authorize(t, env.establishSession(t))
		_, err := svc.PutRecord(context.Background(), teacherLaunch(), quizDraft())
		require.NoError(t, err)
		return env, svc, host
	}

	t.Run("correct answer earns full points and passes back", func(t *testing.T) {
		_, svc, host := seed(t)
		ctx := context.Background()

		rec, err := svc.PutSubmission(ctx, studentLaunch("student-1"), "paris")
		require.NoError(t, err)
		require.NotNil(t, rec.PointsEarned)
		require.Equal(t, 100.0, *rec.PointsEarned)

		require.Len(t, host.grades, 1)
		require.Equal(t, gradeCall{"course-1", "item-1", "attachment-1", "sub-1", 100}, host.grades[0])
	})

	t.Run("wrong answer earns zero", func(t *testing.T) {
		_, svc, _ := seed(t)

		rec, err := svc.PutSubmission(context.Background(), studentLaunch("student-1"), "Lyon")
		require.NoError(t, err)
		require.NotNil(t, rec.PointsEarned)
		require.Zero(t, *rec.PointsEarned)
	})

	t.Run("last write wins", func(t *testing.T) {
		_, svc, _ := seed(t)
		ctx := context.Background()
		lc := studentLaunch("student-1")

		_, err := svc.PutSubmission(ctx, lc, "Lyon")
		require.NoError(t, err)
		_, err = svc.PutSubmission(ctx, lc, "Paris")
		require.NoError(t, err)

		got, err := svc.Submission(ctx, lc)
		require.NoError(t, err)
		require.Equal(t, "Paris", got.Response)
		require.Equal(t, 100.0, *got.PointsEarned)
	})

	t.Run("students are isolated from each other", func(t *testing.T) {
		_, svc, _ := seed(t)
		ctx := context.Background()

		_, err := svc.PutSubmission(ctx, studentLaunch("student-1"), "Paris")
		require.NoError(t, err)

		_, err = svc.Submission(ctx, studentLaunch("student-2"))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("teachers cannot submit and no state is written", func(t *testing.T) {
		_, svc, _ := seed(t)
		ctx := context.Background()

		_, err := svc.PutSubmission(ctx, teacherLaunch(), "Paris")
		require.ErrorIs(t, err, ErrForbidden)

		_, err = svc.ReviewSubmission(ctx, teacherLaunch(), "user-1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("submitting against a missing attachment", func(t *testing.T) {
		_, svc, _ := newAttachmentEnv(t)

		_, err := svc.PutSubmission(context.Background(), studentLaunch("student-1"), "Paris")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("passback failure does not lose the submission", func(t *testing.T) {
		_, svc, host := seed(t)
		ctx := context.Background()
		host.patchErr = errors.New("host is down")

		_, err := svc.PutSubmission(ctx, studentLaunch("student-1"), "Paris")
		require.NoError(t, err)

		got, err := svc.Submission(ctx, studentLaunch("student-1"))
		require.NoError(t, err)
		require.Equal(t, "Paris", got.Response)
	})

	t.Run("no submission id skips passback", func(t *testing.T) {
		_, svc, host := seed(t)

		lc := studentLaunch("student-1")
		lc.SubmissionID = ""
		_, err := svc.PutSubmission(context.Background(), lc, "Paris")
		require.NoError(t, err)
		require.Empty(t, host.grades)
	})

	t.Run("teacher reviews a student's work", func(t *testing.T) {
		_, svc, _ := seed(t)
		ctx := context.Background()

		_, err := svc.PutSubmission(ctx, studentLaunch("student-1"), "Paris")
		require.NoError(t, err)

		got, err := svc.ReviewSubmission(ctx, teacherLaunch(), "student-1")
		require.NoError(t, err)
		require.Equal(t, "Paris", got.Response)

		_, err = svc.ReviewSubmission(ctx, studentLaunch("student-2"), "student-1")
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAttachmentKeyIsolation(t *testing.T) {
	t.Parallel()

	_, svc, _ := newAttachmentEnv(t)
	ctx := context.Background()

	// Same course and item, two attachments: state must not bleed.
	first := teacherLaunch()
	second := teacherLaunch()
	second.AttachmentID = "attachment-2"

	_, err := svc.PutRecord(ctx, first, quizDraft())
	require.NoError(t, err)

	draft := quizDraft()
	draft.Title = "Rivers quiz"
	draft.ExpectedAnswer = "Seine"
	_, err = svc.PutRecord(ctx, second, draft)
	require.NoError(t, err)

	a, err := svc.Record(ctx, first)
	require.NoError(t, err)
	b, err := svc.Record(ctx, second)
	require.NoError(t, err)
	require.Equal(t, "Capitals quiz", a.Title)
	require.Equal(t, "Rivers quiz", b.Title)

	s1 := studentLaunch("student-1")
	s2 := studentLaunch("student-1")
	s2.AttachmentID = "attachment-2"
	s2.SubmissionID = ""

	_, err = svc.PutSubmission(ctx, s1, "Paris")
	require.NoError(t, err)

	_, err = svc.Submission(ctx, s2)
	require.ErrorIs(t, err, ErrNotFound)
}
