package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/carbnb/apiserver/config"
	"github.com/carbnb/apiserver/internal/mq"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a rendered email.
type Mailer interface {
	Send(email Email) error
}

// SMTPMailer sends email over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer constructs a mailer from config.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(email Email) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)
	return m.dialer.DialAndSend(msg)
}

// Worker consumes the notifications channel and delivers email.
type Worker struct {
	queue  *mq.Queue
	mailer Mailer
}

// NewWorker constructs a Worker over the provided queue and mailer.
func NewWorker(queue *mq.Queue, mailer Mailer) *Worker {
	return &Worker{queue: queue, mailer: mailer}
}

// Run blocks consuming notifications until the context is cancelled.
// Handler errors nack the message for redelivery; undecodable messages
// are dropped so they cannot wedge the queue.
func (w *Worker) Run(ctx context.Context) error {
	return w.queue.Subscribe(ctx, Channel, func(ctx context.Context, msg mq.Message) error {
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			log.Printf("notify: dropping undecodable message %s: %v", msg.ID, err)
			return nil
		}

		email, err := RenderEnvelope(env)
		if err != nil {
			log.Printf("notify: dropping unrenderable %s message %s: %v", env.Kind, msg.ID, err)
			return nil
		}

		if err := w.mailer.Send(email); err != nil {
			return fmt.Errorf("send %s email to %s: %w", env.Kind, email.To, err)
		}
		log.Printf("notify: sent %s email to %s", env.Kind, email.To)
		return nil
	})
}
