package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/internal/addon/store"
	"github.com/campusware/edukit/pkg/slogx"
)

// ErrMissingField is the sentinel all MissingFieldError values match.
var ErrMissingField = errors.New("missing_launch_field")

// MissingFieldError names the launch parameter the host failed to supply.
// It matches ErrMissingField via errors.Is.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing launch field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// LaunchService turns raw iframe launch parameters into a trusted, typed
// launch context: required fields present, credential valid, role verified.
type LaunchService struct {
	Store       store.Store
	Credentials *CredentialService
	Verifier    RoleVerifier
}

// ResolveLaunch validates params and resolves the launch context for the
// session. requireAttachment distinguishes view launches, which address an
// existing attachment, from creation launches, which do not yet have one.
//
// Errors:
//   - *MissingFieldError (matches ErrMissingField) for absent parameters;
//     nothing downstream runs and no state is touched.
//   - ErrNoCredential / ErrRefreshFailed when the session cannot produce a
//     usable credential; the caller restarts authorization.
//   - ErrUntrustedRole when no verified claim vouches for the role.
func (s *LaunchService) ResolveLaunch(ctx context.Context, session domain.Session, params domain.LaunchParams, requireAttachment bool) (domain.LaunchContext, error) {
	log := slogx.FromContext(ctx)

	if params.CourseID == "" {
		return domain.LaunchContext{}, &MissingFieldError{Field: "courseId"}
	}
	if params.ItemID == "" {
		return domain.LaunchContext{}, &MissingFieldError{Field: "itemId"}
	}
	if requireAttachment && params.AttachmentID == "" {
		return domain.LaunchContext{}, &MissingFieldError{Field: "attachmentId"}
	}

	if _, err := s.Credentials.ValidCredential(ctx, session); err != nil {
		return domain.LaunchContext{}, err
	}

	claim, err := s.Verifier.Verify(ctx, session, params)
	if err != nil {
		return domain.LaunchContext{}, err
	}

	submissionID := params.SubmissionID
	if claim.SubmissionID != "" {
		submissionID = claim.SubmissionID
	}

	lc := domain.LaunchContext{
		CourseID:     params.CourseID,
		ItemID:       params.ItemID,
		AttachmentID: params.AttachmentID,
		SubmissionID: submissionID,
		Role:         claim.Role,
		UserID:       session.UserID,
	}

	log.Info("launch resolved",
		"course_id", lc.CourseID,
		"item_id", lc.ItemID,
		"attachment_id", lc.AttachmentID,
		"role", string(lc.Role),
	)
	return lc, nil
}

// DeriveAttachmentKey builds the storage key from launch parameters.
// Course and item are required; the attachment component may be empty while
// an attachment is being created, before the host has assigned it an ID.
// Identical parameter tuples always derive the same key, and the empty
// component cannot collide with any assigned ID.
func DeriveAttachmentKey(params domain.LaunchParams) (domain.AttachmentKey, error) {
	if params.CourseID == "" {
		return domain.AttachmentKey{}, &MissingFieldError{Field: "courseId"}
	}
	if params.ItemID == "" {
		return domain.AttachmentKey{}, &MissingFieldError{Field: "itemId"}
	}
	return domain.AttachmentKey{
		CourseID:     params.CourseID,
		ItemID:       params.ItemID,
		AttachmentID: params.AttachmentID,
	}, nil
}
