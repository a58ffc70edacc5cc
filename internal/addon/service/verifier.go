package service

import (
	"context"
	"errors"

	"github.com/campusware/edukit/internal/addon/classroom"
	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/pkg/jwtx"
	"github.com/campusware/edukit/pkg/slogx"
)

// ErrUntrustedRole is returned when no verified host claim vouches for the
// launching user's role. Request shape, referrers, and query parameters are
// never accepted as role evidence.
var ErrUntrustedRole = errors.New("untrusted_role")

// RoleClaim is the verified outcome of role resolution for one launch.
type RoleClaim struct {
	Role domain.Role

	// SubmissionID is filled when the host reports a student context and
	// knows which submission the launch belongs to.
	SubmissionID string
}

// RoleVerifier resolves a trusted role for a launch. Implementations differ
// in where the trust comes from: a host API call under the user's own
// credential, or a signed launch token.
type RoleVerifier interface {
	Verify(ctx context.Context, session domain.Session, params domain.LaunchParams) (RoleClaim, error)
}

// HostRoleVerifier asks the host platform which capacity the user holds in
// the launching course. The call runs under the user's own credential, so
// the host answers from its enrolment records and the claim cannot be
// forged client-side.
type HostRoleVerifier struct {
	Credentials *CredentialService

	// Endpoint overrides the Classroom API endpoint. Tests point it at a
	// local fake; empty means the real service.
	Endpoint string
}

func (v *HostRoleVerifier) Verify(ctx context.Context, session domain.Session, params domain.LaunchParams) (RoleClaim, error) {
	log := slogx.FromContext(ctx)

	ts, err := v.Credentials.TokenSource(ctx, session)
	if err != nil {
		return RoleClaim{}, err
	}

	var opts []classroom.Option
	if v.Endpoint != "" {
		opts = append(opts, classroom.WithEndpoint(v.Endpoint))
	}
	client, err := classroom.New(ctx, ts, opts...)
	if err != nil {
		return RoleClaim{}, err
	}

	hostCtx, err := client.AddOnContext(ctx, params.CourseID, params.ItemID, params.AddOnToken)
	if err != nil {
		log.Warn("host context lookup failed", "course_id", params.CourseID, "error", err)
		return RoleClaim{}, ErrUntrustedRole
	}

	switch {
	case hostCtx.Teacher && !hostCtx.Student:
		return RoleClaim{Role: domain.RoleTeacher}, nil
	case hostCtx.Student && !hostCtx.Teacher:
		return RoleClaim{Role: domain.RoleStudent, SubmissionID: hostCtx.SubmissionID}, nil
	default:
		return RoleClaim{}, ErrUntrustedRole
	}
}

// TokenRoleVerifier trusts an RS256-signed launch token minted by the host.
// The role claim in the token is the only role evidence; identifiers in the
// token, when present, must match the launch parameters.
type TokenRoleVerifier struct {
	Verifier *jwtx.Verifier
}

func (v *TokenRoleVerifier) Verify(ctx context.Context, _ domain.Session, params domain.LaunchParams) (RoleClaim, error) {
	log := slogx.FromContext(ctx)

	if params.LaunchToken == "" {
		return RoleClaim{}, ErrUntrustedRole
	}

	claims, err := v.Verifier.Verify(params.LaunchToken)
	if err != nil {
		log.Warn("launch token rejected", "error", err)
		return RoleClaim{}, ErrUntrustedRole
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return RoleClaim{}, ErrUntrustedRole
	}
	if claims.CourseID != "" && claims.CourseID != params.CourseID {
		return RoleClaim{}, ErrUntrustedRole
	}
	if claims.ItemID != "" && claims.ItemID != params.ItemID {
		return RoleClaim{}, ErrUntrustedRole
	}
	if claims.AttachmentID != "" && params.AttachmentID != "" && claims.AttachmentID != params.AttachmentID {
		return RoleClaim{}, ErrUntrustedRole
	}

	return RoleClaim{Role: role}, nil
}
