package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateApprovalRequest = "approval_request.html"
	TemplateLeaveProgress   = "leave_progress.html"
	TemplateLeaveDecision   = "leave_decision.html"
)

// EmailPayload is the data every leave email template renders.
type EmailPayload struct {
	Subject          string
	RecipientName    string
	ApplicantName    string
	LeaveType        string
	StartDate        string
	EndDate          string
	WorkingDays      float64
	Step             int
	NextApproverRole string
	Status           string
	Comments         string
	ApplicationID    int64
}

var subjects = map[string]func(EmailPayload) string{
	TemplateApprovalRequest: func(p EmailPayload) string {
		return fmt.Sprintf("Leave approval needed: %s (%s)", p.ApplicantName, p.LeaveType)
	},
	TemplateLeaveProgress: func(p EmailPayload) string {
		return fmt.Sprintf("Your %s leave passed step %d", p.LeaveType, p.Step)
	},
	TemplateLeaveDecision: func(p EmailPayload) string {
		return fmt.Sprintf("Your %s leave was %s", p.LeaveType, p.Status)
	},
}

type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render returns the subject and HTML body of a template.
func (r *Renderer) Render(name string, payload EmailPayload) (string, string, error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	payload.Subject = subject(payload)

	var body bytes.Buffer
	if err := r.templates.ExecuteTemplate(&body, name, payload); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return payload.Subject, body.String(), nil
}
