package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-access-control/config"
	"github.com/oksasatya/go-access-control/pkg/helpers"
	"github.com/oksasatya/go-access-control/pkg/mailer"
	mailtpl "github.com/oksasatya/go-access-control/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		logger.WithError(err).Fatal("queue declare")
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	w := &worker{
		sender:   mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		resolver: mailtpl.IPAPIResolver{},
		logger:   logger,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			switch w.handle(context.Background(), msg.Body) {
			case ack:
				_ = msg.Ack(false)
			case requeue:
				_ = msg.Nack(false, true)
			default:
				_ = msg.Nack(false, false)
			}
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type outcome int

const (
	ack outcome = iota
	requeue
	drop
)

type worker struct {
	sender   mailer.Sender
	resolver mailtpl.GeoResolver
	logger   *logrus.Logger
}

// handle renders and sends one job. Malformed jobs are dropped; send failures are requeued.
func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad message")
		return drop
	}
	if err := job.Validate(); err != nil {
		w.logger.WithError(err).Warn("bad message")
		return drop
	}
	helpers.NormalizeEmailJob(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			w.logger.WithField("template", job.Template).Warn("unknown template")
			return drop
		}
		if w.resolver != nil {
			helpers.LocalizeTimesIfPossible(ctx, w.resolver, job.Data)
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			w.logger.WithError(err).WithField("template", job.Template).Error("render failed")
			return drop
		}
		subject, text, html = s, t, h
	}
	if subject == "" {
		subject = helpers.FallbackSubject(job.Template)
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.sender.Send(c, job.To, subject, text, html); err != nil {
		w.logger.WithError(err).WithField("template", job.Template).Warn("send failed")
		return requeue
	}
	w.logger.WithField("template", job.Template).Info("email sent")
	return ack
}
