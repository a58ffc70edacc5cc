// Package classroom wraps the Google Classroom add-on surface behind a
// small client that returns plain structs, keeping the generated API types
// out of the service layer.
package classroom

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	classroomapi "google.golang.org/api/classroom/v1"
	"google.golang.org/api/option"
)

// Context is the host's view of a launch: which course and item it belongs
// to and in which capacity the current user is enrolled. Exactly one of
// Teacher or Student is set for a well-formed launch.
type Context struct {
	CourseID     string
	ItemID       string
	SubmissionID string
	Teacher      bool
	Student      bool
}

// Attachment is the host-side record of an add-on attachment.
type Attachment struct {
	ID        string
	Title     string
	MaxPoints float64
}

// Client talks to the Classroom add-on endpoints with a caller-supplied
// token source, so every call runs under the launching user's credential.
type Client struct {
	svc *classroomapi.Service
}

// Option customises client construction. Tests use WithEndpoint to aim the
// client at a local fake.
type Option func(*options)

type options struct {
	endpoint string
}

func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

func New(ctx context.Context, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	apiOpts := []option.ClientOption{option.WithTokenSource(ts)}
	if o.endpoint != "" {
		apiOpts = append(apiOpts, option.WithEndpoint(o.endpoint))
	}

	svc, err := classroomapi.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("classroom: new service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// AddOnContext resolves the launch context for the given course and item.
// The host decides teacher vs student from its own enrolment records, which
// is why role claims come from here rather than from iframe parameters.
func (c *Client) AddOnContext(ctx context.Context, courseID, itemID, addOnToken string) (Context, error) {
	call := c.svc.Courses.CourseWork.GetAddOnContext(courseID, itemID)
	if addOnToken != "" {
		call = call.AddOnToken(addOnToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return Context{}, fmt.Errorf("classroom: get add-on context: %w", err)
	}

	out := Context{
		CourseID: res.CourseId,
		ItemID:   itemID,
	}
	if res.TeacherContext != nil {
		out.Teacher = true
	}
	if res.StudentContext != nil {
		out.Student = true
		out.SubmissionID = res.StudentContext.SubmissionId
	}
	return out, nil
}

// CreateAttachment registers a new attachment on the course work item and
// returns the host-assigned attachment ID.
func (c *Client) CreateAttachment(ctx context.Context, courseID, itemID, addOnToken string, att Attachment, teacherViewURI, studentViewURI, reviewURI string) (Attachment, error) {
	req := &classroomapi.AddOnAttachment{
		Title:                att.Title,
		MaxPoints:            att.MaxPoints,
		TeacherViewUri:       &classroomapi.EmbedUri{Uri: teacherViewURI},
		StudentViewUri:       &classroomapi.EmbedUri{Uri: studentViewURI},
		StudentWorkReviewUri: &classroomapi.EmbedUri{Uri: reviewURI},
	}

	res, err := c.svc.Courses.CourseWork.AddOnAttachments.Create(courseID, itemID, req).
		AddOnToken(addOnToken).
		Context(ctx).
		Do()
	if err != nil {
		return Attachment{}, fmt.Errorf("classroom: create attachment: %w", err)
	}
	return Attachment{ID: res.Id, Title: res.Title, MaxPoints: res.MaxPoints}, nil
}

// GetAttachment fetches the host-side attachment record.
func (c *Client) GetAttachment(ctx context.Context, courseID, itemID, attachmentID string) (Attachment, error) {
	res, err := c.svc.Courses.CourseWork.AddOnAttachments.Get(courseID, itemID, attachmentID).
		Context(ctx).
		Do()
	if err != nil {
		return Attachment{}, fmt.Errorf("classroom: get attachment: %w", err)
	}
	return Attachment{ID: res.Id, Title: res.Title, MaxPoints: res.MaxPoints}, nil
}

// PatchSubmissionGrade writes pointsEarned back to the host. The call must
// run under a teacher credential; the host rejects it otherwise.
func (c *Client) PatchSubmissionGrade(ctx context.Context, courseID, itemID, attachmentID, submissionID string, points float64) error {
	sub := &classroomapi.AddOnAttachmentStudentSubmission{PointsEarned: points}

	_, err := c.svc.Courses.CourseWork.AddOnAttachments.StudentSubmissions.
		Patch(courseID, itemID, attachmentID, submissionID, sub).
		UpdateMask("pointsEarned").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("classroom: patch submission grade: %w", err)
	}
	return nil
}
