package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

const confirmationSubject = "Welcome to Pointhed Waitlist! 🎉"

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
      <h1>🎉 You're on the Waitlist!</h1>
    </div>
    <div style="background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
      <p>Hi there!</p>
      <p>Thanks for joining the Pointhed waitlist. We're excited to have you on board! 🚀</p>
      {{if .HasPosition}}<p style="font-size: 18px; font-weight: bold; color: #667eea; text-align: center; margin: 20px 0;">📊 You are number {{.Position}} on the waitlist!</p>{{end}}
      <p>We're working hard to bring you the best customer loyalty platform for businesses. You'll be among the first to know when we launch.</p>
      <p><strong>What happens next?</strong></p>
      <ul>
        <li>We'll keep you updated on our progress</li>
        <li>You'll get early access when we launch</li>
        <li>Special offers for early adopters</li>
      </ul>
      <p>In the meantime, want to try our instant demo?</p>
      <a href="{{.FrontendURL}}" style="display: inline-block; background: #667eea; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; margin: 20px 0;">Try Instant Demo</a>
    </div>
    <div style="text-align: center; margin-top: 30px; color: #666; font-size: 14px;">
      <p>© {{.Year}} Pointhed. All rights reserved.</p>
      <p>If you didn't sign up for this, you can safely ignore this email.</p>
    </div>
  </div>
</body>
</html>`))

// NewSenderFromEnv picks an SMTP profile from EMAIL_SERVICE (gmail, sendgrid
// or custom SMTP_HOST). Returns nil when no provider is configured; callers
// then skip the confirmation mail entirely.
func NewSenderFromEnv() *Sender {
	from := os.Getenv("EMAIL_FROM")

	switch os.Getenv("EMAIL_SERVICE") {
	case "gmail":
		return &Sender{
			Host:     "smtp.gmail.com",
			Port:     587,
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     from,
		}
	case "sendgrid":
		return &Sender{
			Host:     "smtp.sendgrid.net",
			Port:     587,
			User:     "apikey",
			Password: os.Getenv("SENDGRID_API_KEY"),
			From:     from,
		}
	}

	if host := os.Getenv("SMTP_HOST"); host != "" {
		port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if err != nil {
			port = 587
		}
		return &Sender{
			Host:     host,
			Port:     port,
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     from,
		}
	}

	log.Println("⚠️ No email service configured, confirmation emails will not be sent")
	return nil
}

// SendWaitlistConfirmation delivers the signup confirmation. position <= 0
// omits the position line.
func (s *Sender) SendWaitlistConfirmation(to string, position int) error {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}

	data := confirmationData{
		Position:    position,
		HasPosition: position > 0,
		FrontendURL: frontendURL,
		Year:        time.Now().Year(),
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render confirmation template: %w", err)
	}

	from := s.From
	if from == "" {
		from = s.User
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", confirmationSubject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	return nil
}
