// internal/pkg/email/smtp.go
package email

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"
)

// sendSMTP sends a message using SMTP (Gmail, Outlook, or self-hosted)
func (n *Notifier) sendSMTP(msg *Message) error {
	cfg := n.config.Email

	if cfg.SMTPHost == "" || cfg.SMTPUser == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host or username")
	}

	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	body := buildMIMEMessage(from, msg)

	serverAddr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)

	if cfg.SMTPUseTLS {
		return n.sendSMTPWithTLS(serverAddr, auth, cfg.FromEmail, msg.To, body)
	}
	return smtp.SendMail(serverAddr, auth, cfg.FromEmail, msg.To, body)
}

// buildMIMEMessage assembles headers, HTML body and the optional attachment
func buildMIMEMessage(from string, msg *Message) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.AttachmentBytes) == 0 {
		buf.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
		buf.WriteString("\r\n")
		buf.WriteString(msg.HTMLContent)
		return buf.Bytes()
	}

	boundary := "mixed-boundary-42"
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	// HTML part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTMLContent)
	buf.WriteString("\r\n")

	// Attachment part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: application/pdf\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", msg.AttachmentName))
	buf.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(msg.AttachmentBytes)
	// Wrap base64 lines at 76 characters per RFC 2045
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.Bytes()
}

// sendSMTPWithTLS sends a message over an explicit TLS connection
func (n *Notifier) sendSMTPWithTLS(serverAddr string, auth smtp.Auth, from string, to []string, body []byte) error {
	tlsConfig := &tls.Config{
		ServerName: n.config.Email.SMTPHost,
	}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return fmt.Errorf("failed to create TLS connection: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.config.Email.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send DATA command: %w", err)
	}
	defer writer.Close()

	if _, err := writer.Write(body); err != nil {
		return fmt.Errorf("failed to write email content: %w", err)
	}

	return nil
}
