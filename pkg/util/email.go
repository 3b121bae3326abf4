package util

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/jerseylab/jerseylab-backend/config"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
)

// Mailer sends transactional email. Failures are reported to the caller,
// who decides whether they matter.
type Mailer interface {
	SendWelcomeEmail(toEmail, name string) error
	SendInquiryConfirmation(toEmail, firstName string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg  config.MailConfig
	send sendFunc
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f4f4f4;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 8px;">
		<h1 style="color: #111;">JerseyLab</h1>
		<h2>Welcome to JerseyLab, {{.Name}}!</h2>
		<p>Thank you for joining our community of athletes, influencers, and basketball enthusiasts.</p>
		<p>Browse our exclusive collections, shop professional athlete jerseys, or explore custom teamwear.</p>
		<p style="text-align: center;">
			<a href="{{.ClientURL}}" style="display: inline-block; background-color: #111; color: #fff; padding: 14px 36px; text-decoration: none; border-radius: 6px;">Start Shopping</a>
		</p>
		<p>Best regards,<br><strong>The JerseyLab Team</strong></p>
		<p style="color: #999; font-size: 12px;">&copy; {{.Year}} JerseyLab. All rights reserved.</p>
	</div>
</body>
</html>
`))

var inquiryTemplate = template.Must(template.New("inquiry").Parse(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f4f4f4;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 8px;">
		<h1 style="color: #111;">JerseyLab Teamwear</h1>
		<p>Hi {{.Name}},</p>
		<p>We received your custom teamwear request. Our design team will review it and get back to you within two business days.</p>
		<p>Best regards,<br><strong>The JerseyLab Team</strong></p>
		<p style="color: #999; font-size: 12px;">&copy; {{.Year}} JerseyLab. All rights reserved.</p>
	</div>
</body>
</html>
`))

type mailData struct {
	Name      string
	ClientURL string
	Year      int
}

func (m *SMTPMailer) SendWelcomeEmail(toEmail, name string) error {
	return m.deliver(toEmail, "Welcome to JerseyLab!", welcomeTemplate, mailData{
		Name:      name,
		ClientURL: m.cfg.ClientURL,
		Year:      time.Now().Year(),
	})
}

func (m *SMTPMailer) SendInquiryConfirmation(toEmail, firstName string) error {
	return m.deliver(toEmail, "We received your teamwear inquiry", inquiryTemplate, mailData{
		Name: firstName,
		Year: time.Now().Year(),
	})
}

func (m *SMTPMailer) deliver(toEmail, subject string, tmpl *template.Template, data mailData) error {
	// Dev mode: without SMTP credentials the mail is only logged
	if m.cfg.SMTPHost == "" || m.cfg.Username == "" || m.cfg.Password == "" {
		logger.Info("[DEV MODE] Email not sent", logger.Fields{
			"to":      toEmail,
			"subject": subject,
		})
		return nil
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}

	message := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		m.cfg.From, toEmail, subject, body.String(),
	))

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	if err := m.send(m.cfg.SMTPHost+":"+m.cfg.SMTPPort, auth, m.cfg.Username, []string{toEmail}, message); err != nil {
		logger.Error("Failed to send email", err, logger.Fields{
			"to":      toEmail,
			"subject": subject,
		})
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("Email sent", logger.Fields{
		"to":      toEmail,
		"subject": subject,
	})
	return nil
}
