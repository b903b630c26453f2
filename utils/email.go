package utils

import (
	"fmt"
	"html"
	"net/smtp"
	"time"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// sendMail is replaced in tests.
var sendMail = smtp.SendMail

func SendEmail(config EmailConfig, to, subject, htmlBody string) error {
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}
	if to == "" {
		return fmt.Errorf("no recipient")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return sendMail(addr, auth, config.From, []string{to}, msg)
}

// ImportSummary is what the import notification reports.
type ImportSummary struct {
	Source   string
	Imported int
	Skipped  int
	Cities   int
	Duration time.Duration
}

// SendImportSummary mails the result of a finished batch.
func SendImportSummary(config EmailConfig, to string, s ImportSummary) error {
	subject := fmt.Sprintf("Bait shop import: %d imported, %d skipped", s.Imported, s.Skipped)
	body := fmt.Sprintf(`<h2>Import complete</h2>
<p>Source: <strong>%s</strong></p>
<ul>
<li>Imported: %d</li>
<li>Skipped: %d</li>
<li>Cities loaded/created: %d</li>
<li>Duration: %s</li>
</ul>`, html.EscapeString(s.Source), s.Imported, s.Skipped, s.Cities, s.Duration.Round(time.Second))

	return SendEmail(config, to, subject, body)
}
