package utils

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"lostluggage/models"
)

// Notifier tells a passenger that an admin changed one of their reports.
type Notifier interface {
	ReportChanged(ctx context.Context, to models.User, report models.LostReport) error
}

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridNotifier struct {
	client mailSender
	from   *mail.Email
}

func NewSendGridNotifier(apiKey, fromName, fromAddr string) *SendGridNotifier {
	return &SendGridNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddr),
	}
}

func reportChangedContent(to models.User, report models.LostReport) (subject, plain, html string) {
	subject = fmt.Sprintf("Update on lost luggage report #%d", report.ID)
	plain = fmt.Sprintf("Hello %s,\n\nYour report #%d is now %q.\nRemarks: %s\n",
		to.Name, report.ID, report.Status, report.Remarks)
	html = fmt.Sprintf("<p>Hello %s,</p><p>Your report <strong>#%d</strong> is now <strong>%s</strong>.</p><p>Remarks: %s</p>",
		escapeHTML(to.Name), report.ID, escapeHTML(report.Status), escapeHTML(report.Remarks))
	return subject, plain, html
}

func (n *SendGridNotifier) ReportChanged(ctx context.Context, to models.User, report models.LostReport) error {
	subject, plain, html := reportChangedContent(to, report)
	message := mail.NewSingleEmail(n.from, subject, mail.NewEmail(to.Name, to.Email), plain, html)

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send report notification: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send report notification: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogNotifier records notifications in the log instead of sending mail.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) ReportChanged(_ context.Context, to models.User, report models.LostReport) error {
	subject, _, _ := reportChangedContent(to, report)
	n.Logger.Info("report notification",
		zap.String("to", to.Email),
		zap.String("subject", subject),
		zap.Int64("report_id", report.ID),
		zap.String("status", report.Status))
	return nil
}

// NewNotifier picks SendGrid when an API key is configured.
func NewNotifier(cfg Config, logger *zap.Logger) Notifier {
	if cfg.SendGridAPIKey == "" {
		return LogNotifier{Logger: logger}
	}
	return NewSendGridNotifier(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFrom)
}
