package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/config"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/mailer"
	mailtpl "github.com/pavelkhrustalyov/energy-app-local/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify", cfg.Env)

	if !cfg.NotifyEnabled {
		logger.Info("NOTIFY_ENABLED=false; notification worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQNotifyQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQNotifyQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				helpers.LogError(logger, "bad message", err, nil)
				_ = msg.Nack(false, false)
				continue
			}
			if job.To == "" {
				helpers.LogInfo(logger, "dropping job without recipient", logrus.Fields{"template": job.Template})
				_ = msg.Ack(false)
				continue
			}
			helpers.EnsureRecipientAndEmail(&job)

			subject, text, html := job.Subject, job.Text, job.HTML
			if mailtpl.Known(job.Template) {
				s, t, h, rerr := mailtpl.Render(job.Template, job.Data)
				if rerr != nil {
					helpers.LogError(logger, "render failed", rerr, logrus.Fields{"template": job.Template})
					_ = msg.Nack(false, false)
					continue
				}
				subject, text, html = s, t, h
			}
			if subject == "" {
				subject = helpers.SubjectFor(job.Template)
			}

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := mg.Send(c, job.To, subject, text, html)
			cancel()
			if err != nil {
				helpers.LogError(logger, "send failed", err, logrus.Fields{"template": job.Template})
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("notification worker listening on queue=%s", cfg.RabbitMQNotifyQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
