package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/mailer"
	mailtpl "github.com/pavelkhrustalyov/energy-app-local/pkg/mailer/templates"
)

// Publisher puts a JSON job on the notification queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier enqueues e-mail jobs for profile events. Users without an e-mail
// address are skipped; a nil notifier is a no-op.
type Notifier struct {
	Pub     Publisher
	AppName string
	Logger  *logrus.Logger
}

func NewNotifier(pub Publisher, appName string, logger *logrus.Logger) *Notifier {
	if pub == nil {
		return nil
	}
	return &Notifier{Pub: pub, AppName: appName, Logger: orNop(logger)}
}

func (n *Notifier) ProfileUpdated(ctx context.Context, u *entity.User, actorID string, changes map[string]string) {
	if n == nil || u == nil || u.Email == "" {
		return
	}
	n.publish(ctx, u, mailtpl.ProfileUpdated, mailtpl.EmailData{ActorID: actorID, Changes: changes})
}

func (n *Notifier) AccountDeleted(ctx context.Context, u *entity.User, actorID string) {
	if n == nil || u == nil || u.Email == "" {
		return
	}
	n.publish(ctx, u, mailtpl.AccountDeleted, mailtpl.EmailData{ActorID: actorID})
}

func (n *Notifier) publish(ctx context.Context, u *entity.User, template string, d mailtpl.EmailData) {
	d.Name = u.Name
	d.Email = u.Email
	d.RecipientEmail = u.Email
	d.Type = template
	d.AppName = n.AppName
	d.Time = time.Now().UTC().Format("02 January 2006, 15:04")
	job := mailer.EmailJob{To: u.Email, Template: template, Data: mailtpl.ToMap(d)}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := n.Pub.PublishJSON(c, job); err != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "template": template}).Warn("enqueue notification failed")
	}
}
