package mailer

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"solarsite/internal/config"
)

// ContactMessage is a contact/quote form submission to relay to the office inbox.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Sender relays contact notifications. Handlers depend on this interface so
// tests can substitute a fake transport.
type Sender interface {
	SendContactNotification(ctx context.Context, msg ContactMessage) error
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// New builds a Mailer from the SMTP account settings.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.To,
	}
}

// SendContactNotification formats the submission into an HTML email and sends
// it synchronously. There is no retry; a transport failure surfaces to the
// caller as a 500.
//
// Field values are embedded verbatim, matching the behavior the site has
// always had. See the contact handler test for the documented consequence.
func (m *Mailer) SendContactNotification(_ context.Context, msg ContactMessage) error {
	phone := msg.Phone
	if phone == "" {
		phone = "Not provided"
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", m.to)
	mail.SetHeader("Subject", fmt.Sprintf("New Contact from %s", msg.Name))
	mail.SetBody("text/html", RenderContactHTML(msg.Name, msg.Email, phone, msg.Message, time.Now()))

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("send contact notification: %w", err)
	}
	return nil
}

// RenderContactHTML builds the notification body shown to the sales team.
func RenderContactHTML(name, email, phone, message string, now time.Time) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>New Solar Inquiry</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f7fa; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff;">
    <div style="background: linear-gradient(135deg, #0a4da3, #00a651); padding: 30px 20px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 22px;">New Customer Inquiry</h1>
    </div>
    <div style="padding: 30px;">
      <h2 style="color: #0a4da3; margin-top: 0;">Customer Details</h2>
      <table style="width: 100%%; border-collapse: collapse;">
        <tr><td style="padding: 12px 0; font-weight: 600; color: #555; width: 30%%;">Name:</td><td>%s</td></tr>
        <tr><td style="padding: 12px 0; font-weight: 600; color: #555;">Email:</td><td><a href="mailto:%s" style="color: #0a4da3;">%s</a></td></tr>
        <tr><td style="padding: 12px 0; font-weight: 600; color: #555;">Phone:</td><td>%s</td></tr>
        <tr><td style="padding: 12px 0; font-weight: 600; color: #555;">Date:</td><td>%s</td></tr>
      </table>
      <div style="background: #f0f8ff; padding: 20px; border-radius: 8px; margin: 25px 0;">
        <h3 style="margin-top: 0; color: #0a4da3;">Customer Message:</h3>
        <p>%s</p>
      </div>
      <p>This potential customer is interested in our solar solutions. Please respond promptly.</p>
    </div>
  </div>
</body>
</html>`, name, email, email, phone, now.Format("02 Jan 2006"), message)
}
