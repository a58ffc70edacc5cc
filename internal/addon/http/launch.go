package http

import (
	"errors"
	"net/http"

	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/internal/addon/service"
	"github.com/campusware/edukit/pkg/slogx"
)

// LaunchPages serves the iframe views the host platform opens: attachment
// discovery, the teacher and student views, and the work review view.
// Every page starts by resolving the launch; a session without a usable
// credential gets the sign-in page instead of its content.
type LaunchPages struct {
	Renderer    *Renderer
	Launch      *service.LaunchService
	Attachments *service.AttachmentService
}

// resolve runs the launch pipeline and renders the appropriate page when
// it fails. The bool reports whether the caller should continue.
func (h *LaunchPages) resolve(w http.ResponseWriter, r *http.Request, params domain.LaunchParams, requireAttachment bool) (domain.LaunchContext, bool) {
	ctx := r.Context()

	sess, ok := sessionFrom(ctx)
	if !ok {
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "No session.")
		return domain.LaunchContext{}, false
	}

	lc, err := h.Launch.ResolveLaunch(ctx, sess, params, requireAttachment)
	switch {
	case err == nil:
		return lc, true
	case errors.Is(err, service.ErrMissingField):
		h.Renderer.RenderError(w, r, http.StatusBadRequest,
			"This page must be opened from your learning platform.")
	case errors.Is(err, service.ErrNoCredential), errors.Is(err, service.ErrRefreshFailed):
		h.Renderer.Render(w, r, http.StatusOK, "authorize.html", map[string]any{
			"AuthorizeURL": authorizePageURL(params.LoginHint),
		})
	case errors.Is(err, service.ErrUntrustedRole):
		h.Renderer.RenderError(w, r, http.StatusForbidden,
			"Your role in this course could not be verified.")
	default:
		slogx.FromContext(ctx).Error("launch resolution failed", "error", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "Launch failed.")
	}
	return domain.LaunchContext{}, false
}

// HandleDiscovery godoc
//
//	@Summary		Attachment Discovery View
//	@Description	Shown to teachers when they add the add-on to a course work item. Renders the attachment creation form.
//	@Tags			Launch
//	@Param			courseId	query	string	true	"Course ID"
//	@Param			itemId		query	string	true	"Course work item ID"
//	@Param			addOnToken	query	string	true	"Host token authorizing attachment creation"
//	@Param			login_hint	query	string	false	"Provider user ID of the launching user"
//	@Success		200	"Creation form, or the sign-in page when unauthorized"
//	@Failure		403	"Launching user is not a teacher in the course"
//	@Router			/addon/discovery [get].
func (h *LaunchPages) HandleDiscovery(w http.ResponseWriter, r *http.Request) {
	params := launchParamsFromForm(r)

	lc, ok := h.resolve(w, r, params, false)
	if !ok {
		return
	}
	if lc.Role != domain.RoleTeacher {
		h.Renderer.RenderError(w, r, http.StatusForbidden, "Only teachers can create attachments.")
		return
	}

	h.Renderer.Render(w, r, http.StatusOK, "discovery.html", map[string]any{
		"Params": params,
	})
}

// HandleTeacherView godoc
//
//	@Summary		Teacher View
//	@Description	The teacher's view of an existing attachment: a preview plus the edit form.
//	@Tags			Launch
//	@Param			courseId		query	string	true	"Course ID"
//	@Param			itemId			query	string	true	"Course work item ID"
//	@Param			attachmentId	query	string	true	"Attachment ID"
//	@Success		200	"Attachment editor, or the sign-in page when unauthorized"
//	@Failure		404	"No attachment stored under this key"
//	@Router			/addon/teacher-view [get].
func (h *LaunchPages) HandleTeacherView(w http.ResponseWriter, r *http.Request) {
	params := launchParamsFromForm(r)

	lc, ok := h.resolve(w, r, params, true)
	if !ok {
		return
	}
	if lc.Role != domain.RoleTeacher {
		h.Renderer.RenderError(w, r, http.StatusForbidden, "Only teachers can open this view.")
		return
	}

	rec, err := h.Attachments.Record(r.Context(), lc)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.Renderer.RenderError(w, r, http.StatusNotFound, "This attachment no longer exists.")
			return
		}
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "Could not load the attachment.")
		return
	}

	h.Renderer.Render(w, r, http.StatusOK, "teacher_view.html", map[string]any{
		"Params": params,
		"Record": rec,
	})
}

// HandleStudentView godoc
//
//	@Summary		Student View
//	@Description	The student's view of an attachment: the question plus the response form, pre-filled with any prior submission.
//	@Tags			Launch
//	@Param			courseId		query	string	true	"Course ID"
//	@Param			itemId			query	string	true	"Course work item ID"
//	@Param			attachmentId	query	string	true	"Attachment ID"
//	@Success		200	"Question form, or the sign-in page when unauthorized"
//	@Router			/addon/student-view [get].
func (h *LaunchPages) HandleStudentView(w http.ResponseWriter, r *http.Request) {
	params := launchParamsFromForm(r)

	lc, ok := h.resolve(w, r, params, true)
	if !ok {
		return
	}
	if lc.Role != domain.RoleStudent {
		h.Renderer.RenderError(w, r, http.StatusForbidden, "Only students can open this view.")
		return
	}
	// Carry the host-resolved submission ID into the form so the follow-up
	// POST can pass the grade back.
	params.SubmissionID = lc.SubmissionID

	rec, err := h.Attachments.Record(r.Context(), lc)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.Renderer.RenderError(w, r, http.StatusNotFound, "This attachment no longer exists.")
			return
		}
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "Could not load the attachment.")
		return
	}

	data := map[string]any{
		"Params":        params,
		"Record":        rec,
		"HasSubmission": false,
	}
	if sub, err := h.Attachments.Submission(r.Context(), lc); err == nil {
		data["HasSubmission"] = true
		data["Submission"] = sub
	}

	h.Renderer.Render(w, r, http.StatusOK, "student_view.html", data)
}

// HandleReview godoc
//
//	@Summary		Student Work Review View
//	@Description	Shown to teachers reviewing one student's work: the stored response and the earned points.
//	@Tags			Launch
//	@Param			courseId		query	string	true	"Course ID"
//	@Param			itemId			query	string	true	"Course work item ID"
//	@Param			attachmentId	query	string	true	"Attachment ID"
//	@Param			studentId		query	string	true	"Provider user ID of the student under review"
//	@Success		200	"Review page, or the sign-in page when unauthorized"
//	@Failure		403	"Launching user is not a teacher in the course"
//	@Router			/addon/review [get].
func (h *LaunchPages) HandleReview(w http.ResponseWriter, r *http.Request) {
	params := launchParamsFromForm(r)

	lc, ok := h.resolve(w, r, params, true)
	if !ok {
		return
	}

	rec, err := h.Attachments.Record(r.Context(), lc)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.Renderer.RenderError(w, r, http.StatusNotFound, "This attachment no longer exists.")
			return
		}
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "Could not load the attachment.")
		return
	}

	data := map[string]any{
		"Params":        params,
		"Record":        rec,
		"HasSubmission": false,
	}
	sub, err := h.Attachments.ReviewSubmission(r.Context(), lc, r.URL.Query().Get("studentId"))
	switch {
	case err == nil:
		data["HasSubmission"] = true
		data["Submission"] = sub
	case errors.Is(err, service.ErrNotFound):
		// no submission yet, render the empty state
	case errors.Is(err, service.ErrForbidden):
		h.Renderer.RenderError(w, r, http.StatusForbidden, "Only teachers can review submissions.")
		return
	default:
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "Could not load the submission.")
		return
	}

	h.Renderer.Render(w, r, http.StatusOK, "review.html", data)
}
