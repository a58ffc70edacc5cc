package domain

import (
	"net/url"
	"time"
)

// AttachmentKey is the composite key for everything stored about one
// attachment: (course, item, attachment). Identical tuples always address
// the same state.
type AttachmentKey struct {
	CourseID     string
	ItemID       string
	AttachmentID string
}

// String renders the key in a single injective form. Each part is
// query-escaped so IDs containing the separator cannot collide.
func (k AttachmentKey) String() string {
	return url.QueryEscape(k.CourseID) + "/" +
		url.QueryEscape(k.ItemID) + "/" +
		url.QueryEscape(k.AttachmentID)
}

// AttachmentRecord is the teacher-authored configuration for one attachment,
// shared by every user who opens it. Only teacher-role sessions may write it.
type AttachmentRecord struct {
	Key AttachmentKey

	Title          string
	Prompt         string
	ExpectedAnswer string
	MaxPoints      float64
	TeacherID      string // creator; their credential is used for grade passback

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubmissionRecord is one student's response, keyed by (AttachmentKey,
// UserID). Last write wins; only the owning student-role session may write.
type SubmissionRecord struct {
	Key    AttachmentKey
	UserID string

	Response     string
	PointsEarned *float64 // set once graded

	CreatedAt time.Time
	UpdatedAt time.Time
}
