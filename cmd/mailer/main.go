package main

import (
	"context"   // Shutdown
	"errors"    // Cancellation detection
	"os/signal" // Shutdown signals
	"syscall"   // SIGTERM

	"github.com/sirupsen/logrus" // Structured logging

	"storefront/internal/config" // Configuration
	"storefront/internal/mail"   // Queue consumer and SendGrid transport
)

// Main runs the worker that drains the mail queue into SendGrid
func main() {
	cfg := config.LoadConfig()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	log := logrus.WithField("service", "mailer")

	if cfg.RabbitMQURL == "" {
		logrus.Fatal("RABBITMQ_URL must be set")
	}
	var deliver mail.Mailer = mail.LogMailer{Log: log}
	if cfg.SendGridKey != "" {
		deliver = mail.NewSendGrid(cfg.SendGridKey)
	} else {
		log.Warn("SENDGRID_API_KEY not set: mail is logged instead of sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := &mail.Consumer{URL: cfg.RabbitMQURL, Queue: cfg.MailQueue, Deliver: deliver, Log: log}
	log.WithField("queue", cfg.MailQueue).Info("Mail worker started")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logrus.Fatalf("mail worker failed: %v", err)
	}
	log.Info("Mail worker stopped")
}
