package utils

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/datacite/datafiles-service/config"
)

const sendTimeout = 15 * time.Second

// Mailer dispatches a plain text message and returns the upstream
// delivery id. A non-success status from the mail API surfaces as an
// error; callers turn it into a generic user-facing failure.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// MailgunMailer sends through the Mailgun HTTP API.
type MailgunMailer struct {
	mg   *mailgun.MailgunImpl
	from string
}

// NewMailgunMailer builds a mailer from the loaded configuration.
func NewMailgunMailer(cfg config.AppConfig) *MailgunMailer {
	mg := mailgun.NewMailgun(cfg.MailDomain, cfg.MailAPIKey)
	if cfg.MailAPIBase != "" {
		mg.SetAPIBase(cfg.MailAPIBase)
	}
	return &MailgunMailer{
		mg:   mg,
		from: fmt.Sprintf("%s <%s>", cfg.MailFromName, cfg.MailFrom),
	}
}

// Send posts the message to Mailgun and returns the message id.
func (m *MailgunMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	msg := m.mg.NewMessage(m.from, subject, body, to)
	_, id, err := m.mg.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("mailgun send: %w", err)
	}
	return id, nil
}

var accessLinkTemplate = template.Must(template.New("access-link").Parse(`Dear {{.Name}},

Thank you for requesting the {{.Datafile}} file, your access link is now available.

This link is a one-time link and will be valid for {{.LinkHours}} hours.

You can download the file here: {{.URL}}

You can find more information about the file at {{.LandingPage}}

Please contact {{.Support}} with any questions or feedback about the file.


DataCite
Am Welfengarten 1B
30167 Hannover
Germany
Email: {{.Support}}
`))

// AccessLinkEmail carries the substitutions for the confirmation mail.
type AccessLinkEmail struct {
	Name        string
	Datafile    string
	LinkHours   int
	URL         string
	LandingPage string
	Support     string
}

// RenderAccessLinkEmail produces the subject and body of the access link
// notification.
func RenderAccessLinkEmail(e AccessLinkEmail) (subject, body string, err error) {
	var buf strings.Builder
	if err := accessLinkTemplate.Execute(&buf, e); err != nil {
		return "", "", err
	}
	subject = fmt.Sprintf("Your access link for the %s data file", e.Datafile)
	return subject, buf.String(), nil
}
