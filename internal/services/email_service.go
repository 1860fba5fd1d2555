package services

import (
	"fmt"

	"remindly/internal/config"
	"remindly/internal/models"
	"remindly/internal/timeutil"

	"github.com/wneessen/go-mail"
)

// EmailService sends mail through the authenticated SMTP relay. One
// attempt per call; retries are the caller's decision.
type EmailService struct {
	client *mail.Client
	from   string
}

// NewEmailService builds the SMTP client from config. Port 587 submits
// with a mandatory STARTTLS upgrade, port 465 over implicit TLS.
func NewEmailService(cfg *config.Config) (*EmailService, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPEmail),
		mail.WithPassword(cfg.SMTPPassword),
	}
	if cfg.SMTPPort == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &EmailService{client: client, from: cfg.SMTPEmail}, nil
}

// SendOTP emails a login code to the admin address.
func (s *EmailService) SendOTP(to, code string) error {
	subject := fmt.Sprintf("Login OTP: %s - Reminder System", code)
	now := timeutil.Now().Format("2006-01-02 15:04:05") + " IST"

	plain := fmt.Sprintf(
		"Reminder System - Login OTP\n\nYour One-Time Password: %s\n\nThis OTP expires in 5 minutes.\nDo not share this code with anyone.\n\nTime: %s\n",
		code, now)

	html := fmt.Sprintf(`<div style="max-width:600px;margin:0 auto;font-family:Arial,sans-serif">
<h2>Reminder System Login</h2>
<p>You are attempting to log into the Reminder System. Use the following code to complete your login:</p>
<div style="background-color:#3498db;color:white;padding:20px;text-align:center;border-radius:8px">
<span style="font-size:32px;font-weight:bold;letter-spacing:5px">%s</span>
</div>
<p><strong>This code expires in 5 minutes.</strong> Do not share it with anyone.
If you didn't request this, ignore this email.</p>
<p style="color:#7f8c8d;font-size:12px">Automated email from Reminder System. Time: %s</p>
</div>`, code, now)

	return s.send(to, subject, plain, html)
}

// SendReminder delivers a due reminder to its stored recipient with its
// stored subject and message.
func (s *EmailService) SendReminder(r models.Reminder) error {
	plain := r.Message
	html := fmt.Sprintf("<p>%s</p><p style=\"color:#7f8c8d;font-size:12px\">Reminder set for %s</p>",
		r.Message, timeutil.FormatDisplay(r.DueAt))
	return s.send(r.Email, r.Subject, plain, html)
}

func (s *EmailService) send(to, subject, plain, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, plain)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	if err := s.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
