package helpers

import (
	"fmt"
	"strings"

	"github.com/pavelkhrustalyov/energy-app-local/pkg/mailer"
	mailtpl "github.com/pavelkhrustalyov/energy-app-local/pkg/mailer/templates"
)

// SubjectFor is the fallback subject when a job carries no template.
func SubjectFor(template string) string {
	switch strings.ToLower(template) {
	case mailtpl.ProfileUpdated:
		return "Your profile was updated"
	case mailtpl.AccountDeleted:
		return "Your account was removed"
	default:
		return "Notification"
	}
}

// EnsureRecipientAndEmail fills Email/RecipientEmail from job.To when absent.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
	if v, ok := job.Data["Type"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Type"] = strings.ToLower(job.Template)
	}
}
