package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	mail "github.com/xhit/go-simple-mail/v2"

	"github.com/strideworks/sprintline/internal/config"
)

// Notifier sends session-completed notifications to coaches.
type Notifier struct {
	config *config.EmailConfig
}

// SessionNotification contains the data for a coach's notification email.
type SessionNotification struct {
	CoachEmail    string
	CoachName     string
	RunnerName    string
	SessionDate   time.Time
	TotalTime     float64
	MaxVelocity   float64
	AvgVelocity   float64
	TotalDistance float64
}

// New creates a new email notification service.
func New(cfg *config.EmailConfig) *Notifier {
	return &Notifier{config: cfg}
}

// SendSessionCompleted notifies a coach that one of their runners completed
// an analysis session.
func (n *Notifier) SendSessionCompleted(notification SessionNotification) error {
	if n.config == nil || !n.config.Enabled {
		log.Debug("Email notifications are disabled, skipping notification")
		return nil
	}

	if notification.CoachEmail == "" {
		log.Warn("Coach email is empty, skipping notification", "coach", notification.CoachName)
		return nil
	}

	subject := fmt.Sprintf("[Sprintline] New 100m session for %s", notification.RunnerName)

	body, err := n.generateEmailBody(notification)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return n.sendEmail(notification.CoachEmail, subject, body)
}

const sessionTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
        .metrics { background-color: #f8f9fa; padding: 15px; border-radius: 5px; }
        .metric { margin-bottom: 8px; }
        .footer { margin-top: 30px; color: #7f8c8d; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="header">
        <h2>New sprint session</h2>
        <p>Hello {{.CoachName}},</p>
        <p>{{.RunnerName}} completed a 100m analysis session on {{.SessionDate.Format "2006-01-02 15:04"}}.</p>
    </div>
    <div class="metrics">
        <div class="metric"><strong>Total time:</strong> {{printf "%.3f" .TotalTime}} s</div>
        <div class="metric"><strong>Max velocity:</strong> {{printf "%.3f" .MaxVelocity}} m/s</div>
        <div class="metric"><strong>Average velocity:</strong> {{printf "%.3f" .AvgVelocity}} m/s</div>
        <div class="metric"><strong>Total distance:</strong> {{printf "%.1f" .TotalDistance}} m</div>
    </div>
    <div class="footer">
        <p>This notification was sent automatically by Sprintline.</p>
    </div>
</body>
</html>`

// generateEmailBody creates the HTML email body.
func (n *Notifier) generateEmailBody(notification SessionNotification) (string, error) {
	tmpl, err := template.New("session").Parse(sessionTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, notification); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return buf.String(), nil
}

// sendEmail delivers the message over SMTP.
func (n *Notifier) sendEmail(to, subject, htmlBody string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	if n.config.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
		server.TLSConfig = &tls.Config{
			ServerName:         n.config.SMTPHost,
			InsecureSkipVerify: n.config.InsecureSkipVerify, //nolint:gosec
		}
	}

	client, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	from := n.config.FromEmail
	if n.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", n.config.FromName, n.config.FromEmail)
	}

	msg := mail.NewMSG()
	msg.SetFrom(from).
		AddTo(to).
		SetSubject(subject).
		SetBody(mail.TextHTML, htmlBody)

	if msg.Error != nil {
		return fmt.Errorf("failed to build email: %w", msg.Error)
	}

	if err := msg.Send(client); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Sent session notification", "to", to)
	return nil
}
