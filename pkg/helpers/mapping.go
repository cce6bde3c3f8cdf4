package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-access-control/pkg/mailer"
	mailtpl "github.com/oksasatya/go-access-control/pkg/mailer/templates"
)

// FallbackSubject is used when a job carries neither a template nor a subject.
func FallbackSubject(template string) string {
	switch strings.ToLower(template) {
	case mailtpl.LoginNotification:
		return "New login to your account"
	case mailtpl.FailedLogin:
		return "Failed sign-in attempt on your account"
	default:
		return "Notification"
	}
}

// NormalizeEmailJob lower-cases the template name and fills Email/RecipientEmail from To.
func NormalizeEmailJob(job *mailer.EmailJob) {
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
