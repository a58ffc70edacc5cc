package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/pkg/slogx"
)

// Renderer executes the embedded view templates. Pages render into a
// buffer first so a template error never produces a half-written response.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer(tmpl *template.Template) *Renderer {
	return &Renderer{tmpl: tmpl}
}

func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := rd.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slogx.FromContext(r.Context()).Error("template render failed",
			"template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (rd *Renderer) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	rd.Render(w, r, status, "error.html", map[string]any{"Message": message})
}

// launchParamsFromForm reads the launch parameters the host supplies, from
// the query on GET launches and the form body on POST follow-ups.
func launchParamsFromForm(r *http.Request) domain.LaunchParams {
	get := r.URL.Query().Get
	if r.Method != http.MethodGet {
		_ = r.ParseForm()
		get = r.Form.Get
	}
	return domain.LaunchParams{
		CourseID:     get("courseId"),
		ItemID:       get("itemId"),
		AttachmentID: get("attachmentId"),
		SubmissionID: get("submissionId"),
		LoginHint:    get("login_hint"),
		AddOnToken:   get("addOnToken"),
		LaunchToken:  get("launchToken"),
	}
}
