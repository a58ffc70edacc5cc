package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/campusware/edukit/internal/addon/service"
	"github.com/campusware/edukit/pkg/slogx"
)

// HandleSaveAttachment godoc
//
//	@Summary		Create or Update an Attachment
//	@Description	Without an attachmentId this registers a new attachment with the host platform under the teacher's credential.
//	@Description	With one it rewrites the stored record. Teacher role only; forbidden calls leave no state behind.
//	@Tags			Attachments
//	@Accept			application/x-www-form-urlencoded
//	@Param			courseId		formData	string	true	"Course ID"
//	@Param			itemId			formData	string	true	"Course work item ID"
//	@Param			attachmentId	formData	string	false	"Attachment ID; absent when creating"
//	@Param			addOnToken		formData	string	false	"Host token, required when creating"
//	@Param			title			formData	string	true	"Attachment title"
//	@Param			prompt			formData	string	true	"Question shown to students"
//	@Param			expectedAnswer	formData	string	true	"Answer submissions are graded against"
//	@Param			maxPoints		formData	number	false	"Points for a correct answer"
//	@Success		200	"Acknowledgement page after creation"
//	@Success		303	"Redirect back to the teacher view after an update"
//	@Failure		403	"Launching user is not a teacher in the course"
//	@Router			/addon/attachments [post].
func (h *LaunchPages) HandleSaveAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := launchParamsFromForm(r)

	creating := params.AttachmentID == ""
	lc, ok := h.resolve(w, r, params, !creating)
	if !ok {
		return
	}

	maxPoints, err := strconv.ParseFloat(r.Form.Get("maxPoints"), 64)
	if err != nil || maxPoints < 0 {
		maxPoints = 100
	}
	draft := service.AttachmentDraft{
		Title:          r.Form.Get("title"),
		Prompt:         r.Form.Get("prompt"),
		ExpectedAnswer: r.Form.Get("expectedAnswer"),
		MaxPoints:      maxPoints,
	}
	if draft.Title == "" || draft.Prompt == "" || draft.ExpectedAnswer == "" {
		h.Renderer.RenderError(w, r, http.StatusBadRequest, "Title, question, and answer are required.")
		return
	}

	if creating {
		sess, ok := sessionFrom(ctx)
		if !ok {
			h.Renderer.RenderError(w, r, http.StatusInternalServerError, "No session.")
			return
		}

		rec, err := h.Attachments.CreateAttachment(ctx, sess, lc, params.AddOnToken, draft)
		if err != nil {
			if errors.Is(err, service.ErrForbidden) {
				h.Renderer.RenderError(w, r, http.StatusForbidden, "Only teachers can create attachments.")
				return
			}
			slogx.FromContext(ctx).Error("attachment creation failed", "error", err)
			h.Renderer.RenderError(w, r, http.StatusBadGateway, "The platform rejected the attachment.")
			return
		}

		h.Renderer.Render(w, r, http.StatusOK, "ack.html", map[string]any{
			"Title":   "Attachment created",
			"Message": "\"" + rec.Title + "\" was added. You can close this dialog.",
		})
		return
	}

	if _, err := h.Attachments.PutRecord(ctx, lc, draft); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			h.Renderer.RenderError(w, r, http.StatusForbidden, "Only teachers can edit attachments.")
			return
		}
		slogx.FromContext(ctx).Error("attachment update failed", "error", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, "Could not save the attachment.")
		return
	}

	http.Redirect(w, r, "/addon/teacher-view?"+url.Values{
		"courseId":     {params.CourseID},
		"itemId":       {params.ItemID},
		"attachmentId": {params.AttachmentID},
		"launchToken":  {params.LaunchToken},
	}.Encode(), http.StatusSeeOther)
}

// HandleSubmitResponse godoc
//
//	@Summary		Submit a Response
//	@Description	Stores the student's answer under (course, item, attachment, user), grades it against the expected answer,
//	@Description	and passes the grade back to the host under the attachment creator's credential. Last write wins.
//	@Tags			Attachments
//	@Accept			application/x-www-form-urlencoded
//	@Param			courseId		formData	string	true	"Course ID"
//	@Param			itemId			formData	string	true	"Course work item ID"
//	@Param			attachmentId	formData	string	true	"Attachment ID"
//	@Param			submissionId	formData	string	false	"Host submission ID for grade passback"
//	@Param			response		formData	string	true	"The student's answer"
//	@Success		303	"Redirect back to the student view"
//	@Failure		403	"Launching user is not a student in the course"
//	@Router			/addon/submissions [post].
func (h *LaunchPages) HandleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := launchParamsFromForm(r)

	lc, ok := h.resolve(w, r, params, true)
	if !ok {
		return
	}

	response := r.Form.Get("response")
	if response == "" {
		h.Renderer.RenderError(w, r, http.StatusBadRequest, "An answer is required.")
		return
	}

	if _, err := h.Attachments.PutSubmission(ctx, lc, response); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			h.Renderer.RenderError(w, r, http.StatusForbidden, "Only students can submit answers.")
		case errors.Is(err, service.ErrNotFound):
			h.Renderer.RenderError(w, r, http.StatusNotFound, "This attachment no longer exists.")
		default:
			slogx.FromContext(ctx).Error("submission write failed", "error", err)
			h.Renderer.RenderError(w, r, http.StatusInternalServerError, "Could not save your answer.")
		}
		return
	}

	http.Redirect(w, r, "/addon/student-view?"+url.Values{
		"courseId":     {params.CourseID},
		"itemId":       {params.ItemID},
		"attachmentId": {params.AttachmentID},
		"submissionId": {lc.SubmissionID},
		"launchToken":  {params.LaunchToken},
	}.Encode(), http.StatusSeeOther)
}
