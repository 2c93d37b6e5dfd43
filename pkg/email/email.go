package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"go-interview-backend/config"
)

// EmailService sends candidate notifications via SMTP. Currently the only
// notification is the invite re-send after a staff refresh.
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
}

// InviteEmailData holds the data for invite link emails.
type InviteEmailData struct {
	ApplicantName string
	JobTitle      string
	CompanyName   string
	InviteURL     string
	ExpiresAt     string
}

// NewEmailService creates a new email service from SMTP configuration.
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
	}
}

// inviteEmailTemplate is the HTML template for invite link emails.
const inviteEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your Interview Link</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .button { display: inline-block; background: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 15px 0; }
        .note { color: #888; font-size: 13px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Your Interview Link</h1>
        </div>
        <div class="content">
            <p>Hi {{.ApplicantName}},</p>
            <p>Here is your new link for the <strong>{{.JobTitle}}</strong> interview{{if .CompanyName}} at {{.CompanyName}}{{end}}:</p>
            <p><a class="button" href="{{.InviteURL}}">Start your interview</a></p>
            <p class="note">This link replaces any earlier one you received and is valid until {{.ExpiresAt}}. It can only be used once.</p>
        </div>
        <div class="footer">
            <p>If you were not expecting this email, you can safely ignore it.</p>
        </div>
    </div>
</body>
</html>`

// SendInviteEmail sends a refreshed invite link to the applicant.
func (s *EmailService) SendInviteEmail(toEmail string, data InviteEmailData) error {
	tmpl, err := template.New("invite").Parse(inviteEmailTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := fmt.Sprintf("Your interview link for %s", data.JobTitle)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		toEmail,
		subject,
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration.
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
