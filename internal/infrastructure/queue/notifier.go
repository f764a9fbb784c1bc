// Package queue turns account events into email jobs on RabbitMQ.
package queue

import (
	"context"
	"strings"
	"time"

	"github.com/oksasatya/clubhub/internal/domain/entity"
	"github.com/oksasatya/clubhub/pkg/mailer"
	"github.com/oksasatya/clubhub/pkg/mailer/templates"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, kind string, body any) error
}

type Notifier struct {
	pub      Publisher
	appName  string
	clubName string
	now      func() time.Time
}

func NewNotifier(pub Publisher, appName, clubName string) *Notifier {
	return &Notifier{pub: pub, appName: appName, clubName: clubName, now: time.Now}
}

func displayName(u *entity.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Welcome queues the registration email.
func (n *Notifier) Welcome(ctx context.Context, u *entity.User) error {
	data := templates.NewWelcomeData(n.appName, n.clubName, displayName(u), u.Username, u.Email)
	return n.publish(ctx, templates.Welcome, u.Email, data)
}

// PasswordChanged queues the security notice sent after a password change.
func (n *Notifier) PasswordChanged(ctx context.Context, u *entity.User, ip string) error {
	data := templates.NewPasswordChangedData(n.appName, n.clubName, displayName(u), u.Username, u.Email,
		templates.WithTime(n.now()), templates.WithIP(ip))
	return n.publish(ctx, templates.PasswordChanged, u.Email, data)
}

func (n *Notifier) publish(ctx context.Context, tmpl, to string, data map[string]any) error {
	job := mailer.EmailJob{To: to, Template: tmpl, Data: data}
	return n.pub.PublishJSON(ctx, tmpl, job)
}
