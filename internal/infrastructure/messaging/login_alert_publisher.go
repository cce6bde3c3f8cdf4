package messaging

import (
	"context"
	"time"

	"github.com/oksasatya/go-access-control/internal/application"
	"github.com/oksasatya/go-access-control/internal/domain/entity"
	"github.com/oksasatya/go-access-control/pkg/mailer"
	mailtpl "github.com/oksasatya/go-access-control/pkg/mailer/templates"
)

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// LoginAlertPublisher queues login alert emails for the email worker.
type LoginAlertPublisher struct {
	pub   JSONPublisher
	brand mailtpl.Brand
}

func NewLoginAlertPublisher(pub JSONPublisher, brand mailtpl.Brand) *LoginAlertPublisher {
	return &LoginAlertPublisher{pub: pub, brand: brand}
}

var _ application.LoginNotifier = (*LoginAlertPublisher)(nil)

func (p *LoginAlertPublisher) NotifyLogin(ctx context.Context, u *entity.User, status entity.AccessStatus, client application.ClientInfo, at time.Time) error {
	opts := []mailtpl.Option{
		mailtpl.WithIP(client.IPAddress),
		mailtpl.WithUserAgent(client.UserAgent),
		mailtpl.WithTime(at),
	}
	job := mailer.EmailJob{To: u.Email}
	if status == entity.AccessSuccess {
		job.Template = mailtpl.LoginNotification
		job.Data = mailtpl.NewLoginNotificationData(p.brand, u.Name, u.Email, opts...)
	} else {
		job.Template = mailtpl.FailedLogin
		job.Data = mailtpl.NewFailedLoginData(p.brand, u.Name, u.Email, opts...)
	}

	c, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.pub.PublishJSON(c, mailer.MessageType, job)
}
